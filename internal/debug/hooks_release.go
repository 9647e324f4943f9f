//go:build !debug

package debug

// Hook is a no-op in release builds.
func Hook(name string, f func(interface{})) {}

// RunHook is a no-op in release builds.
func RunHook(name string, context interface{}) {}

// RemoveHook is a no-op in release builds.
func RemoveHook(name string) {}
