//go:build tools

package tools

// Mocks are generated with an installed mockery v3 binary rather than a
// blank-imported tool dependency. Run: mockery (from the module root).
