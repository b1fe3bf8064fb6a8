package state

import "time"

// File describes a file the user picked in the UI.
type File struct {
	Name         string
	Size         int64
	ContentType  string
	LastModified time.Time
}

// FileSelection is the currently selected file, if any.
type FileSelection struct {
	File *File
}

// HasFile reports whether a file is selected.
func (s FileSelection) HasFile() bool {
	return s.File != nil
}

// FileState owns the file selection of a single UI session.
type FileState struct {
	cell *Cell[FileSelection]
}

// NewFileState returns a state with nothing selected.
func NewFileState() *FileState {
	return &FileState{cell: NewCell(FileSelection{})}
}

// Current returns the selection.
func (s *FileState) Current() FileSelection {
	return s.cell.Get()
}

// SetFile replaces the selection. A nil file clears it.
func (s *FileState) SetFile(f *File) {
	s.cell.Set(FileSelection{File: f})
}

// Subscribe registers fn for selection changes.
func (s *FileState) Subscribe(fn func(FileSelection)) func() {
	return s.cell.Subscribe(fn)
}
