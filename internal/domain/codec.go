package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// CoursesPrefix marks a message whose text carries a serialized course
// array instead of display text. The exact prefix string must not change:
// stored message logs are decoded by matching it byte-for-byte.
const CoursesPrefix = "__courses__:"

// EncodeCourses serializes a course list into a message text suitable for
// persisting inline in a session's message log.
func EncodeCourses(courses []Course) (string, error) {
	data, err := json.Marshal(courses)
	if err != nil {
		return "", fmt.Errorf("encode courses: %w", err)
	}
	return CoursesPrefix + string(data), nil
}

// IsCoursesMessage reports whether a message text carries encoded courses.
func IsCoursesMessage(text string) bool {
	return strings.HasPrefix(text, CoursesPrefix)
}

// DecodeCourses parses a sentinel-prefixed message text back into the
// course list it encodes.
func DecodeCourses(text string) ([]Course, error) {
	if !IsCoursesMessage(text) {
		return nil, fmt.Errorf("decode courses: missing %q prefix", CoursesPrefix)
	}
	var courses []Course
	if err := json.Unmarshal([]byte(strings.TrimPrefix(text, CoursesPrefix)), &courses); err != nil {
		return nil, fmt.Errorf("decode courses: %w", err)
	}
	return courses, nil
}
