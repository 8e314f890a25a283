package workouts

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

const maxNameLength = 255

// ValidationErrors maps a form field name to a human-readable problem.
// All fields are validated before returning, so a single response carries
// every problem at once.
type ValidationErrors map[string]string

func (ve ValidationErrors) IsValid() bool {
	return len(ve) == 0
}

// WorkoutForm holds the raw form values of a workout create/update request,
// before validation.
type WorkoutForm struct {
	Name            string
	Date            string
	DurationMinutes string
}

// Validate checks every field and, when all pass, returns the parsed input.
// The date is interpreted in the given location; a blank duration means the
// user left the field empty and becomes nil, never zero.
func (f WorkoutForm) Validate(loc *time.Location) (WorkoutInput, ValidationErrors) {
	errs := ValidationErrors{}
	input := WorkoutInput{}

	name := strings.TrimSpace(f.Name)
	switch {
	case name == "":
		errs["name"] = "name is required"
	case utf8.RuneCountInString(name) > maxNameLength:
		errs["name"] = "name is too long"
	default:
		input.Name = name
	}

	if f.Date == "" {
		errs["date"] = "date is required"
	} else if date, err := ParseDate(f.Date, loc); err != nil {
		errs["date"] = "date must be a valid date (YYYY-MM-DD)"
	} else {
		input.Date = date
	}

	if duration := strings.TrimSpace(f.DurationMinutes); duration != "" {
		minutes, err := strconv.Atoi(duration)
		if err != nil || minutes <= 0 {
			errs["durationMinutes"] = "duration must be a positive number of minutes"
		} else {
			input.DurationMinutes = &minutes
		}
	}

	return input, errs
}

// SetForm holds the raw form values of a set logging request. Weight
// arrives in the user's display unit and is converted to pounds after
// validation, not here.
type SetForm struct {
	Reps   string
	Weight string
}

// SetInput is a validated set: reps as a positive count, weight as a
// non-negative number still in the unit the user typed it in.
type SetInput struct {
	Reps   int
	Weight float64
}

func (f SetForm) Validate() (SetInput, ValidationErrors) {
	errs := ValidationErrors{}
	input := SetInput{}

	if reps := strings.TrimSpace(f.Reps); reps == "" {
		errs["reps"] = "reps is required"
	} else if count, err := strconv.Atoi(reps); err != nil || count <= 0 {
		errs["reps"] = "reps must be a positive number"
	} else {
		input.Reps = count
	}

	if weight := strings.TrimSpace(f.Weight); weight == "" {
		errs["weight"] = "weight is required"
	} else if value, err := strconv.ParseFloat(weight, 64); err != nil || value < 0 {
		// zero is fine, bodyweight movements are logged with weight 0
		errs["weight"] = "weight must be a non-negative number"
	} else {
		input.Weight = value
	}

	return input, errs
}

// ExerciseForm holds the raw form values of a catalog entry request.
type ExerciseForm struct {
	Name        string
	Description string
	MuscleGroup string
}

// ExerciseInput is a validated catalog entry.
type ExerciseInput struct {
	Name        string
	Description string
	MuscleGroup string
}

func (f ExerciseForm) Validate() (ExerciseInput, ValidationErrors) {
	errs := ValidationErrors{}
	input := ExerciseInput{
		Description: strings.TrimSpace(f.Description),
		MuscleGroup: strings.TrimSpace(f.MuscleGroup),
	}

	name := strings.TrimSpace(f.Name)
	switch {
	case name == "":
		errs["name"] = "name is required"
	case utf8.RuneCountInString(name) > maxNameLength:
		errs["name"] = "name is too long"
	default:
		input.Name = name
	}

	return input, errs
}
