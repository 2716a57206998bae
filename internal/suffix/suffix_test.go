package suffix

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestApplyToFrom(t *testing.T) {
	require.Equal(t, "widgetPath.2", ApplyToFrom("widgetPath", ".2"))
	require.Equal(t, "widgetPath", ApplyToFrom("widgetPath", ""))

	// Built-ins are never suffixed.
	require.Equal(t, "index", ApplyToFrom("index", ".2"))
	require.Equal(t, "name", ApplyToFrom("name", ".2"))
	require.Equal(t, "default", ApplyToFrom("default", ".2"))

	// Bracketed references suffix the name component only.
	require.Equal(t, "widget.2[label]", ApplyToFrom("widget[label]", ".2"))
	require.Equal(t, "name[label]", ApplyToFrom("name[label]", ".2"))
}

func TestApplyToCondition(t *testing.T) {
	require.Equal(t, "widgetType.2=movies", ApplyToCondition("widgetType=movies", ".2"))
	require.Equal(t, "widgetType=movies", ApplyToCondition("widgetType=movies", ""))

	// Only the left side of an operator is a property reference.
	require.Equal(t, "widgetPath.2~movies", ApplyToCondition("widgetPath~movies", ".2"))

	// Protected names stay unsuffixed.
	require.Equal(t, "name=main", ApplyToCondition("name=main", ".2"))
	require.Equal(t, "suffix=.2", ApplyToCondition("suffix=.2", ".2"))
}

func TestApplyToCondition_Compound(t *testing.T) {
	got := ApplyToCondition("widgetType=movies + widgetArt=poster", ".2")
	require.Equal(t, "widgetType.2=movies+widgetArt.2=poster", got)

	got = ApplyToCondition("[widgetType=movies | widgetType=music]", ".2")
	require.Equal(t, "[widgetType.2=movies|widgetType.2=music]", got)

	got = ApplyToCondition("!widget=grid", ".2")
	require.Equal(t, "!widget.2=grid", got)
}

func TestApplyToCondition_NoSuffixSpans(t *testing.T) {
	got := ApplyToCondition("{NOSUFFIX:widgetType=movies}", ".2")
	require.Equal(t, "widgetType=movies", got)

	got = ApplyToCondition("{NOSUFFIX:widgetType=movies}+widgetArt=poster", ".2")
	require.Equal(t, "widgetType=movies+widgetArt.2=poster", got)
}

func TestStripNoSuffixMarkers(t *testing.T) {
	require.Equal(t, "widgetType=movies", StripNoSuffixMarkers("{NOSUFFIX:widgetType=movies}"))
	require.Equal(t, "a=1 + b=2", StripNoSuffixMarkers("a=1 + {NOSUFFIX:b=2}"))
	require.Equal(t, "plain", StripNoSuffixMarkers("plain"))
}
