package services

// snapshotMigration rewrites an older persisted snapshot shape in place
type snapshotMigration struct {
	name  string
	apply func(raw map[string]any)
}

// snapshotMigrations run in order on every loaded snapshot before validation
var snapshotMigrations = []snapshotMigration{
	{"split-current-slide-index", splitCurrentSlideIndex},
	{"rename-single-buffer-fields", renameSingleBufferFields},
	{"lift-logo-settings", liftLogoSettings},
	{"coerce-text-overlay-state", coerceTextOverlayState},
	{"default-live-from-preview", defaultLiveFromPreview},
	{"default-temp-edits", defaultTempEdits},
}

func migrateSnapshot(raw map[string]any) {
	for _, m := range snapshotMigrations {
		m.apply(raw)
	}
}

// splitCurrentSlideIndex turns the legacy currentSlideIndex into preview and live indices
func splitCurrentSlideIndex(raw map[string]any) {
	current, ok := raw["currentSlideIndex"]
	if !ok {
		return
	}
	if _, ok := raw["previewSlideIndex"]; !ok {
		raw["previewSlideIndex"] = current
	}
	if _, ok := raw["liveSlideIndex"]; !ok {
		raw["liveSlideIndex"] = current
	}
	delete(raw, "currentSlideIndex")
}

// renameSingleBufferFields maps fields saved before the preview/live split onto the preview side
func renameSingleBufferFields(raw map[string]any) {
	renames := map[string]string{
		"logoState":        "previewLogoState",
		"textOverlayState": "previewTextOverlayState",
		"tempEdits":        "previewTempEdits",
	}
	for legacy, current := range renames {
		v, ok := raw[legacy]
		if !ok {
			continue
		}
		if _, exists := raw[current]; !exists {
			raw[current] = v
		}
		delete(raw, legacy)
	}
}

// liftLogoSettings wraps a bare settings object as {settings, scope: all}
func liftLogoSettings(raw map[string]any) {
	for _, key := range []string{"previewLogoState", "liveLogoState"} {
		logo, ok := raw[key].(map[string]any)
		if !ok {
			continue
		}
		if _, hasSettings := logo["settings"]; hasSettings {
			if _, hasScope := logo["scope"]; !hasScope {
				logo["scope"] = map[string]any{"type": "all"}
			}
			continue
		}
		raw[key] = map[string]any{
			"settings": logo,
			"scope":    map[string]any{"type": "all"},
		}
	}
}

// coerceTextOverlayState turns bare lists or unknown objects into {overlays: [...]}
func coerceTextOverlayState(raw map[string]any) {
	for _, key := range []string{"previewTextOverlayState", "liveTextOverlayState"} {
		v, ok := raw[key]
		if !ok {
			continue
		}
		switch state := v.(type) {
		case []any:
			raw[key] = map[string]any{"overlays": state}
		case map[string]any:
			if _, ok := state["overlays"].([]any); !ok {
				raw[key] = map[string]any{"overlays": []any{}}
			}
		default:
			raw[key] = map[string]any{"overlays": []any{}}
		}
	}
}

// defaultLiveFromPreview fills missing live-side copies with the preview value
func defaultLiveFromPreview(raw map[string]any) {
	pairs := [][2]string{
		{"previewSlideIndex", "liveSlideIndex"},
		{"previewLogoState", "liveLogoState"},
		{"previewTextOverlayState", "liveTextOverlayState"},
		{"previewTempEdits", "liveTempEdits"},
	}
	for _, p := range pairs {
		preview, ok := raw[p[0]]
		if !ok {
			continue
		}
		if _, exists := raw[p[1]]; !exists {
			raw[p[1]] = preview
		}
	}
}

// defaultTempEdits makes sure both edit maps exist
func defaultTempEdits(raw map[string]any) {
	for _, key := range []string{"previewTempEdits", "liveTempEdits"} {
		if _, ok := raw[key].(map[string]any); !ok {
			raw[key] = map[string]any{}
		}
	}
}

// snapshotRequiredFields must be present after migration
var snapshotRequiredFields = []string{
	"liturgyId",
	"savedAt",
	"previewSlideIndex",
	"liveSlideIndex",
}

func missingSnapshotField(raw map[string]any) string {
	for _, key := range snapshotRequiredFields {
		if v, ok := raw[key]; !ok || v == nil {
			return key
		}
	}
	if id, ok := raw["liturgyId"].(string); !ok || id == "" {
		return "liturgyId"
	}
	return ""
}
