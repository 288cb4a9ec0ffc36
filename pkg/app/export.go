package app

import (
	"fmt"
	"io"

	json "github.com/goccy/go-json"

	"tableflip.dev/anispin/pkg/filter"
	"tableflip.dev/anispin/pkg/media"
	"tableflip.dev/anispin/pkg/store"
)

// ExportDocument is the JSON written for the visible view.
type ExportDocument struct {
	Library store.Ref      `json:"library"`
	Params  filter.Params  `json:"params"`
	Total   int            `json:"total"`
	Records []media.Record `json:"records"`
}

// Export writes the current visible list to w.
func (s *Service) Export(w io.Writer) error {
	lib, err := s.Library()
	if err != nil {
		return err
	}
	v := s.View()
	doc := ExportDocument{
		Library: lib.Ref(),
		Params:  v.Params,
		Total:   v.Total,
		Records: v.Visible,
	}
	return writeJSON(w, doc)
}

// ExportLibrary writes the whole library in the form Import reads back.
func (s *Service) ExportLibrary(w io.Writer) error {
	lib, err := s.Library()
	if err != nil {
		return err
	}
	return writeJSON(w, lib)
}

func writeJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("app: encode export: %w", err)
	}
	if _, err := fmt.Fprintln(w, string(b)); err != nil {
		return fmt.Errorf("app: write export: %w", err)
	}
	return nil
}
