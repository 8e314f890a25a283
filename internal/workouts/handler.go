package workouts

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/2beens/liftlog/internal/auth"
	"github.com/2beens/liftlog/internal/telemetry/tracing"
	"github.com/2beens/liftlog/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=workouts_test

type workoutsService interface {
	DayViewJSON(ctx context.Context, userID string, day time.Time, unit Unit) ([]byte, error)
	Workout(ctx context.Context, workoutID int, userID string, unit Unit) (WorkoutView, error)
	CreateWorkout(ctx context.Context, userID string, input WorkoutInput) (*Workout, error)
	UpdateWorkout(ctx context.Context, workoutID int, userID string, input WorkoutInput) (*Workout, error)
	DeleteWorkout(ctx context.Context, workoutID int, userID string) error
	AddExerciseToWorkout(ctx context.Context, workoutID int, userID string, exerciseID int) (*WorkoutExercise, error)
	AddSet(ctx context.Context, workoutExerciseID int, userID string, input SetInput, unit Unit) (*Set, error)
	Exercises(ctx context.Context) ([]Exercise, error)
	Exercise(ctx context.Context, id int) (*Exercise, error)
	CreateExercise(ctx context.Context, input ExerciseInput) (*Exercise, error)
	DeleteExercise(ctx context.Context, id int) error
}

type DeleteWorkoutResponse struct {
	DeletedID int `json:"deletedId"`
}

type DeleteExerciseResponse struct {
	DeletedID int `json:"deletedId"`
}

// ValidationErrorsResponse is the uniform 400 body of a rejected mutation:
// one message per offending form field.
type ValidationErrorsResponse struct {
	Errors ValidationErrors `json:"errors"`
}

type Handler struct {
	service workoutsService
	// location interprets submitted and requested calendar dates
	location      *time.Location
	secureCookies bool
}

func NewHandler(service workoutsService, location *time.Location, secureCookies bool) *Handler {
	return &Handler{
		service:       service,
		location:      location,
		secureCookies: secureCookies,
	}
}

// HandleDay serves the rendered view of one calendar day, weights in the
// unit the requester prefers.
func (handler *Handler) HandleDay(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.day")
	defer span.End()

	userID := auth.UserIDFromContext(ctx)
	if userID == "" {
		http.Error(w, "no user", http.StatusUnauthorized)
		return
	}

	day, err := ParseDate(mux.Vars(r)["date"], handler.location)
	if err != nil {
		http.Error(w, "error, invalid date", http.StatusBadRequest)
		return
	}

	viewJSON, err := handler.service.DayViewJSON(ctx, userID, day, UnitFromRequest(r))
	if err != nil {
		log.Errorf("failed to get day view for %s: %s", FormatDate(day), err)
		http.Error(w, "failed to get workouts", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, viewJSON, http.StatusOK)
}

func (handler *Handler) HandleGetWorkout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.get")
	defer span.End()

	userID := auth.UserIDFromContext(ctx)
	if userID == "" {
		http.Error(w, "no user", http.StatusUnauthorized)
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "error, id invalid", http.StatusBadRequest)
		return
	}

	workoutView, err := handler.service.Workout(ctx, id, userID, UnitFromRequest(r))
	if errors.Is(err, ErrWorkoutNotFound) {
		// nonexistent and not-owned look identical on purpose
		http.Error(w, "workout not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Errorf("failed to get workout %d: %s", id, err)
		http.Error(w, "failed to get workout", http.StatusInternalServerError)
		return
	}

	viewJSON, err := json.Marshal(workoutView)
	if err != nil {
		log.Errorf("failed to marshal workout %d: %s", id, err)
		http.Error(w, "failed to get workout", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, viewJSON, http.StatusOK)
}

func (handler *Handler) HandleNewWorkout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.new")
	defer span.End()

	userID := auth.UserIDFromContext(ctx)
	if userID == "" {
		http.Error(w, "no user", http.StatusUnauthorized)
		return
	}

	if err := r.ParseForm(); err != nil {
		log.Errorf("add workout failed, parse form error: %s", err)
		http.Error(w, "parse form error", http.StatusInternalServerError)
		return
	}

	input, validationErrs := workoutFormFromRequest(r).Validate(handler.location)
	if !validationErrs.IsValid() {
		writeValidationErrors(w, validationErrs)
		return
	}

	workout, err := handler.service.CreateWorkout(ctx, userID, input)
	if err != nil {
		log.Errorf("failed to create workout [%s]: %s", input.Name, err)
		http.Error(w, "failed to create workout", http.StatusInternalServerError)
		return
	}

	log.Tracef("workout created: %d", workout.ID)
	workoutJSON, err := json.Marshal(workout)
	if err != nil {
		log.Errorf("failed to marshal created workout: %s", err)
		http.Error(w, "failed to create workout", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, workoutJSON, http.StatusCreated)
}

func (handler *Handler) HandleUpdateWorkout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.update")
	defer span.End()

	userID := auth.UserIDFromContext(ctx)
	if userID == "" {
		http.Error(w, "no user", http.StatusUnauthorized)
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "error, id invalid", http.StatusBadRequest)
		return
	}

	if err := r.ParseForm(); err != nil {
		log.Errorf("update workout failed, parse form error: %s", err)
		http.Error(w, "parse form error", http.StatusInternalServerError)
		return
	}

	input, validationErrs := workoutFormFromRequest(r).Validate(handler.location)
	if !validationErrs.IsValid() {
		writeValidationErrors(w, validationErrs)
		return
	}

	workout, err := handler.service.UpdateWorkout(ctx, id, userID, input)
	if errors.Is(err, ErrWorkoutNotFound) {
		http.Error(w, "workout not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Errorf("failed to update workout %d: %s", id, err)
		http.Error(w, "failed to update workout", http.StatusInternalServerError)
		return
	}

	workoutJSON, err := json.Marshal(workout)
	if err != nil {
		log.Errorf("failed to marshal updated workout: %s", err)
		http.Error(w, "failed to update workout", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, workoutJSON, http.StatusOK)
}

func (handler *Handler) HandleDeleteWorkout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.delete")
	defer span.End()

	userID := auth.UserIDFromContext(ctx)
	if userID == "" {
		http.Error(w, "no user", http.StatusUnauthorized)
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "error, id invalid", http.StatusBadRequest)
		return
	}

	if err := handler.service.DeleteWorkout(ctx, id, userID); err != nil {
		if errors.Is(err, ErrWorkoutNotFound) {
			http.Error(w, "workout not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to delete workout %d: %s", id, err)
		http.Error(w, "failed to delete workout", http.StatusInternalServerError)
		return
	}

	deleteRespJSON, err := json.Marshal(DeleteWorkoutResponse{DeletedID: id})
	if err != nil {
		log.Errorf("failed to marshal delete response: %s", err)
		http.Error(w, "failed to marshal delete response", http.StatusInternalServerError)
		return
	}
	pkg.WriteJSONResponseOK(w, string(deleteRespJSON))
}

// HandleAddExerciseToWorkout appends a catalog exercise to a workout; it
// gets the next order index.
func (handler *Handler) HandleAddExerciseToWorkout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.addExercise")
	defer span.End()

	userID := auth.UserIDFromContext(ctx)
	if userID == "" {
		http.Error(w, "no user", http.StatusUnauthorized)
		return
	}

	workoutID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "error, id invalid", http.StatusBadRequest)
		return
	}

	if err := r.ParseForm(); err != nil {
		log.Errorf("add exercise to workout failed, parse form error: %s", err)
		http.Error(w, "parse form error", http.StatusInternalServerError)
		return
	}

	exerciseID, err := strconv.Atoi(r.Form.Get("exerciseId"))
	if err != nil {
		writeValidationErrors(w, ValidationErrors{"exerciseId": "exercise is required"})
		return
	}

	workoutExercise, err := handler.service.AddExerciseToWorkout(ctx, workoutID, userID, exerciseID)
	if errors.Is(err, ErrWorkoutNotFound) {
		http.Error(w, "workout not found", http.StatusNotFound)
		return
	}
	if errors.Is(err, ErrExerciseNotFound) {
		writeValidationErrors(w, ValidationErrors{"exerciseId": "unknown exercise"})
		return
	}
	if err != nil {
		log.Errorf("failed to add exercise %d to workout %d: %s", exerciseID, workoutID, err)
		http.Error(w, "failed to add exercise", http.StatusInternalServerError)
		return
	}

	weJSON, err := json.Marshal(workoutExercise)
	if err != nil {
		log.Errorf("failed to marshal workout exercise: %s", err)
		http.Error(w, "failed to add exercise", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, weJSON, http.StatusCreated)
}

// HandleAddSet logs a set against a workout exercise. The submitted weight
// is read in the requester's display unit.
func (handler *Handler) HandleAddSet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.addSet")
	defer span.End()

	userID := auth.UserIDFromContext(ctx)
	if userID == "" {
		http.Error(w, "no user", http.StatusUnauthorized)
		return
	}

	workoutExerciseID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "error, id invalid", http.StatusBadRequest)
		return
	}

	if err := r.ParseForm(); err != nil {
		log.Errorf("add set failed, parse form error: %s", err)
		http.Error(w, "parse form error", http.StatusInternalServerError)
		return
	}

	input, validationErrs := SetForm{
		Reps:   r.Form.Get("reps"),
		Weight: r.Form.Get("weight"),
	}.Validate()
	if !validationErrs.IsValid() {
		writeValidationErrors(w, validationErrs)
		return
	}

	unit := UnitFromRequest(r)
	set, err := handler.service.AddSet(ctx, workoutExerciseID, userID, input, unit)
	if errors.Is(err, ErrWorkoutNotFound) {
		http.Error(w, "workout not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Errorf("failed to add set to workout exercise %d: %s", workoutExerciseID, err)
		http.Error(w, "failed to add set", http.StatusInternalServerError)
		return
	}

	// echo the set back in the unit it was submitted in
	setJSON, err := json.Marshal(SetView{
		SetNumber: set.SetNumber,
		Reps:      set.Reps,
		Weight:    FormatWeight(Convert(set.Weight, UnitPounds, unit)),
	})
	if err != nil {
		log.Errorf("failed to marshal set: %s", err)
		http.Error(w, "failed to add set", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, setJSON, http.StatusCreated)
}

func (handler *Handler) HandleListExercises(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.list")
	defer span.End()

	exercises, err := handler.service.Exercises(ctx)
	if err != nil {
		log.Errorf("failed to list exercises: %s", err)
		http.Error(w, "failed to list exercises", http.StatusInternalServerError)
		return
	}

	exercisesJSON, err := json.Marshal(exercises)
	if err != nil {
		log.Errorf("failed to marshal exercises: %s", err)
		http.Error(w, "failed to list exercises", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, exercisesJSON, http.StatusOK)
}

func (handler *Handler) HandleGetExercise(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.get")
	defer span.End()

	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "error, id invalid", http.StatusBadRequest)
		return
	}

	exercise, err := handler.service.Exercise(ctx, id)
	if errors.Is(err, ErrExerciseNotFound) {
		http.Error(w, "exercise not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Errorf("failed to get exercise %d: %s", id, err)
		http.Error(w, "failed to get exercise", http.StatusInternalServerError)
		return
	}

	exerciseJSON, err := json.Marshal(exercise)
	if err != nil {
		log.Errorf("failed to marshal exercise: %s", err)
		http.Error(w, "failed to get exercise", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, exerciseJSON, http.StatusOK)
}

func (handler *Handler) HandleNewExercise(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.new")
	defer span.End()

	if err := r.ParseForm(); err != nil {
		log.Errorf("add exercise failed, parse form error: %s", err)
		http.Error(w, "parse form error", http.StatusInternalServerError)
		return
	}

	input, validationErrs := ExerciseForm{
		Name:        r.Form.Get("name"),
		Description: r.Form.Get("description"),
		MuscleGroup: r.Form.Get("muscleGroup"),
	}.Validate()
	if !validationErrs.IsValid() {
		writeValidationErrors(w, validationErrs)
		return
	}

	exercise, err := handler.service.CreateExercise(ctx, input)
	if errors.Is(err, ErrExerciseExists) {
		exerciseExistsJSON, err := json.Marshal(ValidationErrorsResponse{
			Errors: ValidationErrors{"name": "an exercise with this name already exists"},
		})
		if err != nil {
			http.Error(w, "failed to add exercise", http.StatusInternalServerError)
			return
		}
		pkg.WriteResponseBytes(w, pkg.ContentType.JSON, exerciseExistsJSON, http.StatusConflict)
		return
	}
	if err != nil {
		log.Errorf("failed to add exercise [%s]: %s", input.Name, err)
		http.Error(w, "failed to add exercise", http.StatusInternalServerError)
		return
	}

	exerciseJSON, err := json.Marshal(exercise)
	if err != nil {
		log.Errorf("failed to marshal exercise: %s", err)
		http.Error(w, "failed to add exercise", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, exerciseJSON, http.StatusCreated)
}

func (handler *Handler) HandleDeleteExercise(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.delete")
	defer span.End()

	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "error, id invalid", http.StatusBadRequest)
		return
	}

	if err := handler.service.DeleteExercise(ctx, id); err != nil {
		switch {
		case errors.Is(err, ErrExerciseNotFound):
			http.Error(w, "exercise not found", http.StatusNotFound)
		case errors.Is(err, ErrExerciseInUse):
			http.Error(w, "exercise is used by existing workouts", http.StatusConflict)
		default:
			log.Errorf("failed to delete exercise %d: %s", id, err)
			http.Error(w, "failed to delete exercise", http.StatusInternalServerError)
		}
		return
	}

	deleteRespJSON, err := json.Marshal(DeleteExerciseResponse{DeletedID: id})
	if err != nil {
		log.Errorf("failed to marshal delete response: %s", err)
		http.Error(w, "failed to marshal delete response", http.StatusInternalServerError)
		return
	}
	pkg.WriteJSONResponseOK(w, string(deleteRespJSON))
}

// HandleGetUnit reports the requester's current weight unit preference.
func (handler *Handler) HandleGetUnit(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.prefs.getUnit")
	defer span.End()

	pkg.WriteJSONResponseOK(w, `{"unit":"`+string(UnitFromRequest(r))+`"}`)
}

// HandleSetUnit stores the weight unit preference in a cookie. Stored
// weights are untouched, only their rendering changes.
func (handler *Handler) HandleSetUnit(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.prefs.setUnit")
	defer span.End()

	if err := r.ParseForm(); err != nil {
		log.Errorf("set unit failed, parse form error: %s", err)
		http.Error(w, "parse form error", http.StatusInternalServerError)
		return
	}

	unit, ok := ParseUnit(r.Form.Get("unit"))
	if !ok {
		writeValidationErrors(w, ValidationErrors{"unit": "unit must be lbs or kg"})
		return
	}

	SetUnitCookie(w, unit, handler.secureCookies)
	pkg.WriteJSONResponseOK(w, `{"unit":"`+string(unit)+`"}`)
}

func workoutFormFromRequest(r *http.Request) WorkoutForm {
	return WorkoutForm{
		Name:            r.Form.Get("name"),
		Date:            r.Form.Get("date"),
		DurationMinutes: r.Form.Get("durationMinutes"),
	}
}

func pathID(r *http.Request, name string) (int, error) {
	return strconv.Atoi(mux.Vars(r)[name])
}

func writeValidationErrors(w http.ResponseWriter, validationErrs ValidationErrors) {
	respJSON, err := json.Marshal(ValidationErrorsResponse{Errors: validationErrs})
	if err != nil {
		log.Errorf("failed to marshal validation errors: %s", err)
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJSON, http.StatusBadRequest)
}
