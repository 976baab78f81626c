package styles

import "github.com/charmbracelet/lipgloss"

var (
	Title     = lipgloss.NewStyle().Bold(true)
	Accent    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5F5FFF"))
	TabActive = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7DCE13"))
	Header    = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
	Footer    = lipgloss.NewStyle().Foreground(lipgloss.Color("#777777"))
	Box       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	Focused   = Box.BorderForeground(lipgloss.Color("#7DCE13"))
	Card      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 2)
	Value     = lipgloss.NewStyle().Bold(true)
	Selected  = lipgloss.NewStyle().Reverse(true)
	Danger    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F87"))
	Warn      = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFAF00"))
	Caution   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF8700"))
	Good      = lipgloss.NewStyle().Foreground(lipgloss.Color("#5FD7AF"))
	Faint     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C6C6C"))
	DemoBadge = lipgloss.NewStyle().Bold(true).Padding(0, 1).
			Foreground(lipgloss.Color("#000000")).Background(lipgloss.Color("#FFAF00"))
	LiveBadge = lipgloss.NewStyle().Bold(true).Padding(0, 1).
			Foreground(lipgloss.Color("#000000")).Background(lipgloss.Color("#5FD7AF"))
)

// Palette colours chart segments in order, wrapping around.
var Palette = []lipgloss.Color{"#0088FE", "#00C49F", "#FFBB28", "#FF8042", "#8884D8"}

func Segment(i int) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(Palette[i%len(Palette)])
}
