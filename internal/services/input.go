package services

import (
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type nameInput struct {
	Name string `validate:"required,max=255"`
}

type bookInput struct {
	Title string `validate:"required,max=255"`
}

var bookLabels = map[string]string{"Title": "book title"}

type borrowerInput struct {
	Name  string `validate:"required,max=255"`
	Phone string `validate:"required,max=64"`
}

// checkInput runs the struct validator and reports the first failure
// as a validation error naming the offending field.
func checkInput(in interface{}, labels map[string]string) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return validationError("invalid input: %v", err)
	}
	fe := verrs[0]
	label := labels[fe.Field()]
	if label == "" {
		label = strings.ToLower(fe.Field())
	}
	switch fe.Tag() {
	case "required":
		return validationError("%s cannot be empty", label)
	case "max":
		return validationError("%s cannot be longer than %s characters", label, fe.Param())
	default:
		return validationError("%s is invalid", label)
	}
}

// ParseID converts menu input into an entity id.
func ParseID(raw, what string) (uint, error) {
	raw = strings.TrimSpace(raw)
	n, err := strconv.ParseUint(raw, 10, 0)
	if err != nil || n == 0 {
		return 0, validationError("invalid %s ID %q, please enter a positive number", what, raw)
	}
	return uint(n), nil
}

// ParseYear converts menu input into a published year.
func ParseYear(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	year, err := strconv.Atoi(raw)
	if err != nil {
		return 0, validationError("invalid year %q, please enter a number", raw)
	}
	return year, nil
}

// CheckTitle rejects a book title AddBook would refuse, so a caller can
// fail before asking for the remaining fields.
func CheckTitle(title string) error {
	return checkInput(bookInput{Title: strings.TrimSpace(title)}, bookLabels)
}
