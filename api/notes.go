package main

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

const exportDateLayout = "2006-01-02 15:04"

type noteService struct {
	storage *storage
}

func (s *noteService) create(ctx context.Context, subject, content string, ownerID int) (*note, error) {
	v := newValidator()
	v.checkCond(subject != "", "subject", "Subject is required!")
	v.checkCond(content != "", "content", "Note content is too short!")
	if err := v.toError(); err != nil {
		return nil, err
	}

	n := &note{
		Subject:   subject,
		Content:   content,
		AccountID: ownerID,
	}
	if err := s.storage.insertNote(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// get resolves a note by id and checks that callerID owns it.
func (s *noteService) get(ctx context.Context, id, callerID int) (*note, error) {
	n, err := s.storage.getNoteByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, errNotFound
	}
	if err := assertOwner(n, callerID); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *noteService) update(ctx context.Context, id int, content string, callerID int) (*note, error) {
	n, err := s.get(ctx, id, callerID)
	if err != nil {
		return nil, err
	}

	v := newValidator()
	v.checkCond(content != "", "content", "Note is too short!")
	if err := v.toError(); err != nil {
		return n, err
	}

	n.Content = content
	if err := s.storage.updateNoteContent(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *noteService) delete(ctx context.Context, id, callerID int) error {
	n, err := s.get(ctx, id, callerID)
	if err != nil {
		return err
	}
	return s.storage.deleteNote(ctx, n)
}

type noteExport struct {
	filename string
	body     string
}

func (s *noteService) export(ctx context.Context, id int, caller *account) (*noteExport, error) {
	n, err := s.get(ctx, id, caller.ID)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Subject: %s\n", n.Subject)
	fmt.Fprintf(&b, "Date: %s\n", n.CreatedAt.Format(exportDateLayout))
	fmt.Fprintf(&b, "Author: %s\n\n", caller.Name)
	fmt.Fprintf(&b, "Content:\n%s", n.Content)

	return &noteExport{
		filename: exportFilename(n),
		body:     b.String(),
	}, nil
}

func (s *noteService) listFor(ctx context.Context, ownerID int) ([]note, error) {
	return s.storage.notesFor(ctx, ownerID)
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._ -]+`)

const maxFilenameLength = 100

// exportFilename builds a download name from the note subject that is safe
// on common file systems.
func exportFilename(n *note) string {
	name := unsafeFilenameChars.ReplaceAllString(n.Subject, "_")
	name = strings.Trim(name, " ._")
	if len(name) > maxFilenameLength {
		name = strings.TrimRight(name[:maxFilenameLength], " ._")
	}
	if name == "" {
		name = fmt.Sprintf("note-%d", n.ID)
	}
	return name + ".txt"
}
