package components

// List is a cursor over a slice of rows with a scrolling window. It only
// tracks positions; callers render the rows.
type List struct {
	Len      int
	Cursor   int
	Offset   int
	PageSize int
}

// NewList creates a list with the given page size.
func NewList(pageSize int) *List {
	if pageSize < 1 {
		pageSize = 1
	}
	return &List{PageSize: pageSize}
}

// SetLen updates the row count, keeping the cursor on the same index when
// possible. Rows come and go as folders expand, so the cursor is clamped
// rather than reset.
func (l *List) SetLen(n int) {
	l.Len = n
	l.clamp()
}

// SetPageSize changes the window height.
func (l *List) SetPageSize(n int) {
	if n < 1 {
		n = 1
	}
	l.PageSize = n
	l.clamp()
}

// SetCursor moves the cursor to idx, scrolling as needed.
func (l *List) SetCursor(idx int) {
	l.Cursor = idx
	l.clamp()
}

// Down moves the cursor down.
func (l *List) Down() {
	if l.Cursor < l.Len-1 {
		l.Cursor++
		if l.Cursor >= l.Offset+l.PageSize {
			l.Offset++
		}
	}
}

// Up moves the cursor up.
func (l *List) Up() {
	if l.Cursor > 0 {
		l.Cursor--
		if l.Cursor < l.Offset {
			l.Offset--
		}
	}
}

// Window returns the half-open range of visible rows.
func (l *List) Window() (start, end int) {
	end = l.Offset + l.PageSize
	if end > l.Len {
		end = l.Len
	}
	return l.Offset, end
}

// RowAt maps a visible line to a row index. It reports false outside the
// window.
func (l *List) RowAt(line int) (int, bool) {
	start, end := l.Window()
	idx := start + line
	if line < 0 || idx >= end {
		return 0, false
	}
	return idx, true
}

func (l *List) clamp() {
	if l.Len == 0 {
		l.Cursor, l.Offset = 0, 0
		return
	}
	if l.Cursor >= l.Len {
		l.Cursor = l.Len - 1
	}
	if l.Cursor < 0 {
		l.Cursor = 0
	}
	if l.Cursor < l.Offset {
		l.Offset = l.Cursor
	}
	if l.Cursor >= l.Offset+l.PageSize {
		l.Offset = l.Cursor - l.PageSize + 1
	}
	if max := l.Len - l.PageSize; l.Offset > max {
		l.Offset = max
	}
	if l.Offset < 0 {
		l.Offset = 0
	}
}
