//go:build !darwin

package permissions

// Ensure is a no-op on non-macOS platforms.
func Ensure(n Needs) error {
	return nil
}
