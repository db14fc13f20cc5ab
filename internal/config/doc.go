// Package config loads and validates wayfare.json project configuration.
//
// The file is discovered by walking up from the working directory, so
// commands work from any subdirectory of a project. Missing fields take
// defaults; the route table declared under "routes" is compiled and
// validated at startup via BuildTable, so a malformed table fails the
// process before it serves a single navigation.
package config
