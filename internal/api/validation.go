package api

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var visitorIDPattern = regexp.MustCompile(`^[A-Za-z0-9._:-]{1,128}$`)

// RegisterValidators adds the custom validation tags to gin's validator
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected binding validator engine")
	}
	return v.RegisterValidation("visitorid", func(fl validator.FieldLevel) bool {
		return validVisitorID(fl.Field().String())
	})
}

func validVisitorID(id string) bool {
	return visitorIDPattern.MatchString(id)
}

// describeValidation turns binding errors into a short message
func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Invalid request body"
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s failed on %s", fe.Namespace(), fe.Tag()))
	}
	return "Invalid request: " + strings.Join(fields, "; ")
}
