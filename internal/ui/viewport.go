package ui

// ensureCursorInViewport adjusts the viewport Y offset so that the given
// absolute cursorLine is within the visible window with a scroll margin.
func (m *Model) ensureCursorInViewport(cursorLine int) {
	topLine := m.viewport.YOffset
	bottomLine := topLine + m.viewport.Height - 1

	scrollMargin := 3
	if m.viewport.Height < 8 {
		scrollMargin = 1
	}

	if cursorLine < topLine+scrollMargin {
		m.viewport.SetYOffset(max(0, cursorLine-scrollMargin))
		return
	}
	if cursorLine > bottomLine-scrollMargin {
		m.viewport.SetYOffset(max(0, cursorLine-m.viewport.Height+scrollMargin+1))
	}
}

// resizeViewport fits the list between header and footer.
func (m *Model) resizeViewport() {
	const chrome = 9
	m.viewport.Width = max(20, m.width)
	m.viewport.Height = max(3, m.height-chrome)
}
