package cmd

import (
	"context"
	"os"

	"github.com/khrees2412/jobdeck/internal/config"
	"github.com/khrees2412/jobdeck/internal/pagesize"
	"golang.org/x/term"
)

// viewportWidth converts the terminal width into the pixel width the page
// sizer works with. A configured width wins over the measured one.
func viewportWidth(cfg config.ViewportConfig) (int, bool) {
	if cfg.Width > 0 {
		return cfg.Width, true
	}
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 0, false
	}
	cols, _, err := term.GetSize(fd)
	if err != nil || cols <= 0 {
		return 0, false
	}
	cellWidth := cfg.CellWidth
	if cellWidth <= 0 {
		cellWidth = 8
	}
	return cols * cellWidth, true
}

// trackViewport sizes pages for the current terminal and keeps doing so on
// every resize until ctx is done.
func trackViewport(ctx context.Context, sizer *pagesize.Sizer, cfg config.ViewportConfig) {
	resize := func() {
		if width, ok := viewportWidth(cfg); ok {
			sizer.Resize(width)
		}
	}
	resize()
	if cfg.Width == 0 {
		onResize(ctx, resize)
	}
}
