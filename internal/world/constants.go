package world

const (
	// DefaultWidthTiles and DefaultHeightTiles size the exterior arena.
	DefaultWidthTiles  = 100
	DefaultHeightTiles = 100

	// FloorsPerContainer is the fixed number of decks in every container.
	FloorsPerContainer = 3

	// FloorWidthTiles and FloorHeightTiles bound one interior deck in the
	// container's local frame. Layouts may be sparser than the bounds.
	FloorWidthTiles  = 20
	FloorHeightTiles = 6

	// ContainerSizeTiles is the square exterior footprint of a container.
	ContainerSizeTiles = 10
)

// Team identifies the owning side of a container.
type Team string

const (
	TeamRed    Team = "red"
	TeamBlue   Team = "blue"
	TeamNature Team = "nature"
)
