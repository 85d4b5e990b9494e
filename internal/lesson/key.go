package lesson

import "strings"

// KeyPrefix is prepended to every content key.
const KeyPrefix = "nst_custom_lesson_"

// segmentEscaper keeps the "-" delimiter unambiguous. Ordinary names pass
// through unchanged.
var segmentEscaper = strings.NewReplacer("%", "%25", "-", "%2D")

// BuildKey derives the storage key for content of type t at c. The stream
// segment is written only for classes 11 and 12.
func BuildKey(c Coordinates, t ContentType) string {
	var b strings.Builder
	b.WriteString(KeyPrefix)
	b.WriteString(segmentEscaper.Replace(string(c.Board)))
	b.WriteByte('-')
	b.WriteString(segmentEscaper.Replace(string(c.ClassLevel)))
	if c.ClassLevel.HasStream() {
		b.WriteByte('-')
		b.WriteString(segmentEscaper.Replace(string(c.Stream)))
	}
	b.WriteByte('-')
	b.WriteString(segmentEscaper.Replace(c.Subject))
	b.WriteByte('-')
	b.WriteString(segmentEscaper.Replace(c.ChapterID))
	b.WriteByte('-')
	b.WriteString(segmentEscaper.Replace(string(t)))
	return b.String()
}
