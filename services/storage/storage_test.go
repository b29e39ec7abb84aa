package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublicIDFromURL(t *testing.T) {
	cases := map[string]string{
		"https://res.cloudinary.com/demo/image/upload/v1712/roaddarts/listings/logo.png": "roaddarts/listings/logo",
		"https://res.cloudinary.com/demo/image/upload/cover.jpg?x=1":                     "cover",
		"https://res.cloudinary.com/demo/video/upload/v1/clips/intro.mp4":                "clips/intro",
		"https://example.com/pic.png":                                                    "",
	}
	for in, want := range cases {
		assert.Equal(t, want, PublicIDFromURL(in), in)
	}
}
