// Package testutils provides the fixture tables, seeded content and store
// helpers shared by the package tests.
package testutils
