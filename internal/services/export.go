package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"

	"liturgy-live/internal/models"
)

// DefaultMaxImportBytes caps the size of an import document
const DefaultMaxImportBytes = 10 << 20

var (
	ErrImportTooLarge        = errors.New("import file too large")
	ErrImportInvalidJSON     = errors.New("import file is not valid JSON")
	ErrImportVersionMismatch = errors.New("import version not compatible")
	ErrImportInvalidSlide    = errors.New("import contains an invalid slide")
)

// BuildExport captures the preview side of a session as a portable document
func BuildExport(state models.PresentationState, exportedBy string, includeFullSlides bool) *models.ExportDocument {
	st := state.Clone()
	doc := &models.ExportDocument{
		Version:    models.ExportVersion,
		ExportedAt: time.Now().UTC(),
		ExportedBy: exportedBy,
		State: models.ExportState{
			TempSlides:        []models.Slide{},
			StyleState:        st.Preview.Styles,
			LogoState:         st.Preview.Logo,
			TextOverlayState:  st.Preview.TextOverlays,
			ImageOverlayState: st.Preview.ImageOverlays,
			TempEdits:         st.Preview.TempEdits,
		},
	}
	if st.Data != nil {
		doc.Liturgy = models.LiturgyRef{
			ID:    st.Data.LiturgyID,
			Title: st.Data.LiturgyTitle,
			Date:  st.Data.LiturgyDate,
		}
		for _, sl := range st.Data.Slides {
			if sl.Metadata.Temporary {
				doc.State.TempSlides = append(doc.State.TempSlides, sl)
			}
		}
		if includeFullSlides {
			doc.IncludeFullSlides = true
			doc.FullSlides = st.Data.Slides
		}
	}
	return doc
}

// WriteExportFile atomically writes the document to path (temp file → rename)
func WriteExportFile(path string, doc *models.ExportDocument) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal export: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	tempPath := path + ".tmp"
	file, err := os.OpenFile(tempPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := file.Write(data); err != nil {
		file.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	// Sync to disk
	if err := file.Sync(); err != nil {
		file.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// Atomic rename
	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// ImportResult is a validated, sanitized import ready to be applied
type ImportResult struct {
	Document *models.ExportDocument
	// IDMap maps each original temp slide id to its new id
	IDMap map[string]string
}

// ReadImportFile reads and parses an import document from disk
func ReadImportFile(path string, maxBytes int64) (*ImportResult, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open import file: %w", err)
	}
	defer file.Close()
	return ParseImport(file, maxBytes, NewID)
}

// ParseImport validates an export document and prepares it for merging:
// HTML is stripped from freeform text and temp slides get fresh ids.
func ParseImport(r io.Reader, maxBytes int64, newID func() string) (*ImportResult, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxImportBytes
	}
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read import: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrImportTooLarge, maxBytes)
	}

	if !json.Valid(data) {
		return nil, ErrImportInvalidJSON
	}
	var header struct {
		Version string `json:"version"`
	}
	if err := json.Unmarshal(data, &header); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportInvalidJSON, err)
	}
	if err := checkImportVersion(header.Version); err != nil {
		return nil, err
	}
	if err := validateImportSlides(data); err != nil {
		return nil, err
	}

	var doc models.ExportDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportInvalidJSON, err)
	}

	sanitizeDocument(&doc)
	idMap := remapTempSlides(&doc, newID)
	return &ImportResult{Document: &doc, IDMap: idMap}, nil
}

// checkImportVersion accepts any version with the same major number
func checkImportVersion(version string) error {
	want := majorVersion(models.ExportVersion)
	if version == "" {
		return fmt.Errorf("%w: missing version", ErrImportVersionMismatch)
	}
	if got := majorVersion(version); got < 0 || got != want {
		return fmt.Errorf("%w: got %q, want %d.x", ErrImportVersionMismatch, version, want)
	}
	return nil
}

func majorVersion(version string) int {
	major, _, _ := strings.Cut(strings.TrimPrefix(version, "v"), ".")
	n, err := strconv.Atoi(major)
	if err != nil {
		return -1
	}
	return n
}

// validateImportSlides checks every slide carries a string id and type.
// It works on the raw JSON so wrongly typed fields are caught too.
func validateImportSlides(data []byte) error {
	var raw struct {
		State struct {
			TempSlides []map[string]any `json:"tempSlides"`
		} `json:"state"`
		FullSlides []map[string]any `json:"fullSlides"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrImportInvalidJSON, err)
	}
	check := func(group string, slides []map[string]any) error {
		for i, sl := range slides {
			id, idOK := sl["id"].(string)
			typ, typeOK := sl["type"].(string)
			if !idOK || id == "" || !typeOK || typ == "" {
				return fmt.Errorf("%w: %s[%d] needs string id and type", ErrImportInvalidSlide, group, i)
			}
		}
		return nil
	}
	if err := check("tempSlides", raw.State.TempSlides); err != nil {
		return err
	}
	return check("fullSlides", raw.FullSlides)
}

// maxStripPasses bounds how many layers of entity-encoded markup StripHTML peels
const maxStripPasses = 8

// StripHTML removes every tag from s and returns the text content. Entities
// are decoded, so text is stripped again until no markup is left; escaped
// tags such as "&lt;img&gt;" are removed rather than turned into live ones.
func StripHTML(s string) string {
	for i := 0; i < maxStripPasses; i++ {
		if !strings.ContainsAny(s, "<&") {
			return s
		}
		next := stripTags(s)
		if next == s {
			return s
		}
		s = next
	}
	return html.EscapeString(s)
}

func stripTags(s string) string {
	var buf bytes.Buffer
	z := html.NewTokenizer(strings.NewReader(s))
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return buf.String()
		case html.StartTagToken:
			if name, _ := z.TagName(); isRawTextTag(string(name)) {
				skip++
			}
		case html.EndTagToken:
			if name, _ := z.TagName(); isRawTextTag(string(name)) && skip > 0 {
				skip--
			}
		case html.TextToken:
			if skip == 0 {
				buf.Write(z.Text())
			}
		}
	}
}

func isRawTextTag(name string) bool {
	return name == "script" || name == "style"
}

func sanitizeSlide(sl *models.Slide) {
	sl.Content.Primary = StripHTML(sl.Content.Primary)
	sl.Content.Secondary = StripHTML(sl.Content.Secondary)
	sl.Content.Subtitle = StripHTML(sl.Content.Subtitle)
	for i, item := range sl.Content.Items {
		sl.Content.Items[i] = StripHTML(item)
	}
}

func sanitizeEdit(e models.TempSlideEdit) models.TempSlideEdit {
	for _, field := range []**string{&e.Content.Primary, &e.Content.Secondary, &e.Content.Subtitle} {
		if *field != nil {
			clean := StripHTML(**field)
			*field = &clean
		}
	}
	return e
}

func sanitizeDocument(doc *models.ExportDocument) {
	doc.ExportedBy = StripHTML(doc.ExportedBy)
	doc.Liturgy.Title = StripHTML(doc.Liturgy.Title)
	doc.Liturgy.Date = StripHTML(doc.Liturgy.Date)
	for i := range doc.State.TempSlides {
		sanitizeSlide(&doc.State.TempSlides[i])
	}
	for i := range doc.FullSlides {
		sanitizeSlide(&doc.FullSlides[i])
	}
	for i := range doc.State.TextOverlayState.Overlays {
		o := &doc.State.TextOverlayState.Overlays[i]
		o.Content = StripHTML(o.Content)
	}
	for id, edit := range doc.State.TempEdits {
		doc.State.TempEdits[id] = sanitizeEdit(edit)
	}
}

// remapTempSlides gives each temp slide a new id and rewrites keys that pointed at the old ones
func remapTempSlides(doc *models.ExportDocument, newID func() string) map[string]string {
	idMap := make(map[string]string, len(doc.State.TempSlides))
	for i := range doc.State.TempSlides {
		sl := &doc.State.TempSlides[i]
		fresh := newID()
		idMap[sl.ID] = fresh
		sl.ID = fresh
		sl.Metadata.Temporary = true
	}

	edits := make(models.TempEdits, len(doc.State.TempEdits))
	for id, edit := range doc.State.TempEdits {
		if fresh, ok := idMap[id]; ok {
			id = fresh
		}
		edits[id] = edit
	}
	doc.State.TempEdits = edits

	slideStyles := make(map[string]models.StyleSet, len(doc.State.StyleState.SlideStyles))
	for id, style := range doc.State.StyleState.SlideStyles {
		if fresh, ok := idMap[id]; ok {
			id = fresh
		}
		slideStyles[id] = style
	}
	doc.State.StyleState.SlideStyles = slideStyles
	return idMap
}

// ApplyImport merges a parsed import into the preview buffer and appends
// its temp slides after the last slide. FullSlides are validated and
// sanitized on parse but never merged: the catalogue slides come from the
// loaded liturgy, not from the file.
func (s *PresentationStore) ApplyImport(result *ImportResult) bool {
	if result == nil || result.Document == nil {
		return false
	}
	imported := result.Document.State
	return s.mutateLoaded(func(st *models.PresentationState) bool {
		for _, sl := range imported.TempSlides {
			st.Data.Slides = append(st.Data.Slides, sl.Clone())
		}

		styles := imported.StyleState.Clone()
		if styles.GlobalStyles != nil {
			var base models.StyleSet
			if st.Preview.Styles.GlobalStyles != nil {
				base = *st.Preview.Styles.GlobalStyles
			}
			merged := base.Merge(*styles.GlobalStyles)
			st.Preview.Styles.GlobalStyles = &merged
		}
		for id, set := range styles.ElementStyles {
			st.Preview.Styles.ElementStyles[id] = st.Preview.Styles.ElementStyles[id].Merge(set)
		}
		for id, set := range styles.SlideStyles {
			st.Preview.Styles.SlideStyles[id] = st.Preview.Styles.SlideStyles[id].Merge(set)
		}

		st.Preview.Logo = models.LogoState{
			Settings: imported.LogoState.Settings.Clamp(),
			Scope:    normalizeScope(imported.LogoState.Scope),
		}
		text := imported.TextOverlayState.Clone()
		if len(text.Overlays) > models.MaxTextOverlays {
			text.Overlays = text.Overlays[:models.MaxTextOverlays]
		}
		st.Preview.TextOverlays = text
		images := imported.ImageOverlayState.Clone()
		if len(images.Overlays) > models.MaxImageOverlays {
			images.Overlays = images.Overlays[:models.MaxImageOverlays]
		}
		st.Preview.ImageOverlays = images

		for id, edit := range imported.TempEdits.Clone() {
			if slideIndexByID(st.Data, id) >= 0 {
				st.Preview.TempEdits[id] = edit
			}
		}
		if len(imported.TempSlides) > 0 {
			st.SlidesChanged = true
		}
		st.RecomputeUnpublished()
		return true
	})
}
