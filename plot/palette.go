package plot

// palette is cycled by slice index on pie charts; bars and lines use the first colour.
var palette = []string{
	"3b82f6",
	"8b5cf6",
	"ec4899",
	"f97316",
	"10b981",
	"06b6d4",
	"f59e0b",
	"6366f1",
	"ef4444",
	"84cc16",
}

func paletteColor(i int) string {
	return palette[i%len(palette)]
}
