//go:build !unix

package cmd

import "context"

// onResize is a no-op where the terminal does not signal resizes.
func onResize(context.Context, func()) {}
