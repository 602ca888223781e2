package valentine

// DefaultReasons backs any draft whose creator supplied no reasons of their own.
var DefaultReasons = []string{
	"You make every single day brighter just by being in it.",
	"The way your eyes light up when you're excited about something.",
	"How safe and at home I feel whenever I'm with you.",
	"Your kindness and empathy for everyone around you.",
	"The small, quiet moments we share that mean the most to me.",
}

// PresetColor is a named accent color offered to creators.
type PresetColor struct {
	Name string `json:"name"`
	Hex  string `json:"hex"`
}

// PresetColors lists the accent colors offered during creation.
var PresetColors = []PresetColor{
	{Name: "Pink", Hex: "#FF1493"},
	{Name: "Red", Hex: "#FF6B6B"},
	{Name: "Purple", Hex: "#9B59B6"},
	{Name: "Blue", Hex: "#5DADE2"},
	{Name: "Teal", Hex: "#1ABC9C"},
	{Name: "Coral", Hex: "#FF7675"},
	{Name: "Rose", Hex: "#E91E63"},
	{Name: "Lavender", Hex: "#B39DDB"},
}

// DateContexts lists the preset significance labels for a special date.
var DateContexts = []string{
	"The day we first met",
	"Our first date",
	"The day I knew I loved you",
	"A night I'll never forget",
	"Custom...",
}
