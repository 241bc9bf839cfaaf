// Package testutil provides small builders shared by tests across packages.
package testutil
