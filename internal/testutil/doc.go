// Package testutil provides fakes and fixtures shared by package tests.
package testutil
