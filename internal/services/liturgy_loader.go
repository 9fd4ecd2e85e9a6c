package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"liturgy-live/internal/models"
)

// ErrLiturgyNotFound is returned when a liturgy id has no catalogue entry
var ErrLiturgyNotFound = errors.New("liturgy not found")

// SlideLoader produces the flattened slide list for a liturgy
type SlideLoader interface {
	Load(ctx context.Context, liturgyID string) (*models.LiturgyData, error)
}

// LiturgyInput is a liturgy as authored: ordered elements each owning slides
type LiturgyInput struct {
	ID       string         `json:"id"`
	Title    string         `json:"title"`
	Date     string         `json:"date,omitempty"`
	Elements []ElementInput `json:"elements"`
}

// ElementInput is one service segment with its slides
type ElementInput struct {
	ID     string         `json:"id"`
	Type   string         `json:"type"`
	Title  string         `json:"title"`
	Slides []models.Slide `json:"slides"`
}

// SQLiteSlideLoader reads liturgies from the catalogue database
type SQLiteSlideLoader struct {
	database *sql.DB
}

// NewSQLiteSlideLoader creates a loader over an initialized database
func NewSQLiteSlideLoader(database *sql.DB) *SQLiteSlideLoader {
	return &SQLiteSlideLoader{
		database: database,
	}
}

// Load flattens a liturgy's elements into one slide list with element ranges.
// A liturgy without slides yields a single blank slide.
func (l *SQLiteSlideLoader) Load(ctx context.Context, liturgyID string) (*models.LiturgyData, error) {
	data := &models.LiturgyData{LiturgyID: liturgyID}
	err := l.database.QueryRowContext(ctx,
		`SELECT title, date FROM liturgies WHERE id = ?`, liturgyID,
	).Scan(&data.LiturgyTitle, &data.LiturgyDate)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrLiturgyNotFound, liturgyID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query liturgy: %w", err)
	}

	query := `SELECT e.id, e.type, e.title, s.id, s.type, s.content, s.style
		FROM liturgy_elements e
		JOIN slides s ON s.element_id = e.id
		WHERE e.liturgy_id = ?
		ORDER BY e.position, s.position`

	rows, err := l.database.QueryContext(ctx, query, liturgyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query slides: %w", err)
	}
	defer rows.Close()

	data.Slides = []models.Slide{}
	data.Elements = []models.FlattenedElement{}
	for rows.Next() {
		var (
			el                 models.FlattenedElement
			slide              models.Slide
			content, styleJSON string
		)
		if err := rows.Scan(&el.ID, &el.Type, &el.Title, &slide.ID, &slide.Type, &content, &styleJSON); err != nil {
			return nil, fmt.Errorf("failed to scan slide: %w", err)
		}
		if err := json.Unmarshal([]byte(content), &slide.Content); err != nil {
			return nil, fmt.Errorf("failed to decode content of slide %s: %w", slide.ID, err)
		}
		if styleJSON != "" {
			slide.Style = &models.SlideStyle{}
			if err := json.Unmarshal([]byte(styleJSON), slide.Style); err != nil {
				return nil, fmt.Errorf("failed to decode style of slide %s: %w", slide.ID, err)
			}
		}

		index := len(data.Slides)
		n := len(data.Elements)
		if n == 0 || data.Elements[n-1].ID != el.ID {
			el.StartSlideIndex = index
			data.Elements = append(data.Elements, el)
			n++
		}
		current := &data.Elements[n-1]
		current.EndSlideIndex = index
		current.SlideCount++

		slide.Metadata = models.SlideMetadata{
			SourceComponent: current.Type,
			SourceID:        current.ID,
			Order:           index,
			GroupIndex:      current.SlideCount - 1,
		}
		data.Slides = append(data.Slides, slide)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read slides: %w", err)
	}

	for _, el := range data.Elements {
		for i := el.StartSlideIndex; i <= el.EndSlideIndex; i++ {
			data.Slides[i].Metadata.GroupTotal = el.SlideCount
		}
	}

	if len(data.Slides) == 0 {
		data.Slides = append(data.Slides, models.BlankSlide(NewID()))
	}
	return data, nil
}

// SaveLiturgy replaces a liturgy and all its elements and slides
func (l *SQLiteSlideLoader) SaveLiturgy(ctx context.Context, in LiturgyInput) error {
	if in.ID == "" {
		return fmt.Errorf("liturgy id is required")
	}

	tx, err := l.database.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM liturgies WHERE id = ?`, in.ID); err != nil {
		return fmt.Errorf("failed to clear liturgy: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO liturgies (id, title, date) VALUES (?, ?, ?)`,
		in.ID, in.Title, in.Date,
	); err != nil {
		return fmt.Errorf("failed to insert liturgy: %w", err)
	}

	slideCount := 0
	for ei, el := range in.Elements {
		if el.ID == "" {
			el.ID = NewID()
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO liturgy_elements (id, liturgy_id, position, type, title) VALUES (?, ?, ?, ?, ?)`,
			el.ID, in.ID, ei, el.Type, el.Title,
		); err != nil {
			return fmt.Errorf("failed to insert element %s: %w", el.ID, err)
		}
		for si, slide := range el.Slides {
			if slide.ID == "" {
				slide.ID = NewID()
			}
			if slide.Type == "" {
				slide.Type = models.SlideTypeBlank
			}
			content, err := json.Marshal(slide.Content)
			if err != nil {
				return fmt.Errorf("failed to encode content of slide %s: %w", slide.ID, err)
			}
			var style []byte
			if slide.Style != nil {
				if style, err = json.Marshal(slide.Style); err != nil {
					return fmt.Errorf("failed to encode style of slide %s: %w", slide.ID, err)
				}
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO slides (id, liturgy_id, element_id, position, type, content, style) VALUES (?, ?, ?, ?, ?, ?, ?)`,
				slide.ID, in.ID, el.ID, si, string(slide.Type), string(content), string(style),
			); err != nil {
				return fmt.Errorf("failed to insert slide %s: %w", slide.ID, err)
			}
			slideCount++
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit liturgy: %w", err)
	}
	log.Printf("Saved liturgy %s (%d elements, %d slides)", in.ID, len(in.Elements), slideCount)
	return nil
}
