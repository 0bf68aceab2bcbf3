package specimen

// Sample lines set in the specimen font.
const (
	Headline = "Good design is obvious."
	Tagline  = "Great design is transparent."
)

// LoadingText is shown until the first font settles.
const LoadingText = "Loading type specimen..."
