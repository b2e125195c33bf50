// Package toolchain drives the dotnet command-line interface. The Client
// interface is what the rest of dnsync depends on; ExecClient implements it by
// running the dotnet binary and streaming its output.
package toolchain
