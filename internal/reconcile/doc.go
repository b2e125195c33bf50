// Package reconcile brings the workspace registry in line with the .NET
// projects on disk. A pass bootstraps the workspace, scans the configured
// directories for project manifests, and registers every manifest that is
// not yet known, with build, serve and test targets derived from its content.
//
// A pass never removes or rewrites existing registry entries, and a pass
// over an unchanged tree writes nothing. Manifests that cannot be parsed are
// reported and skipped; name collisions and filesystem errors abort the pass
// before anything is written.
package reconcile
