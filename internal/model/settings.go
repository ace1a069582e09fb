package model

// Settings is the persisted state consumed at startup and emitted on change or exit.
type Settings struct {
	SelectedAdapter   string `json:"selected_adapter"`
	AutoSelectAdapter bool   `json:"auto_select_adapter"`
	HasPosition       bool   `json:"has_position"`
	PositionX         int    `json:"position_x"`
	PositionY         int    `json:"position_y"`
	FixedPosition     bool   `json:"fixed_position"`
	FontFamily        string `json:"font_family"`
	FontSize          int    `json:"font_size"`
	TextColor         string `json:"text_color"`
}

const (
	DefaultFontFamily = "Segoe UI"
	DefaultFontSize   = 12
	DefaultTextColor  = "#00FF00"
)

func DefaultSettings() Settings {
	return Settings{
		AutoSelectAdapter: true,
		FontFamily:        DefaultFontFamily,
		FontSize:          DefaultFontSize,
		TextColor:         DefaultTextColor,
	}
}
