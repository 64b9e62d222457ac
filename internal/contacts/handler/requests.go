package handler

import (
	"time"

	"contactbook/internal/contacts/models"
	dErrors "contactbook/pkg/domain-errors"
	"contactbook/pkg/email"
)

const dateLayout = time.DateOnly

// ContactRequest is the body of POST /contacts and PUT /contacts/{id}.
// Every field is required; updates replace the whole record.
type ContactRequest struct {
	Name      string `json:"name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	BirthDate string `json:"birth_date"`

	birthDate time.Time
}

func (r *ContactRequest) Validate() error {
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if r.LastName == "" {
		return dErrors.New(dErrors.CodeValidation, "last_name is required")
	}
	addr, err := email.Validate(r.Email)
	if err != nil {
		return err
	}
	r.Email = addr
	if r.Phone == "" {
		return dErrors.New(dErrors.CodeValidation, "phone is required")
	}
	if r.BirthDate == "" {
		return dErrors.New(dErrors.CodeValidation, "birth_date is required")
	}
	born, err := time.Parse(dateLayout, r.BirthDate)
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "birth_date must be a YYYY-MM-DD date")
	}
	r.birthDate = born
	return nil
}

// Fields converts a validated request into contact fields.
func (r *ContactRequest) Fields() models.Fields {
	return models.Fields{
		Name:      r.Name,
		LastName:  r.LastName,
		Email:     r.Email,
		Phone:     r.Phone,
		BirthDate: r.birthDate,
	}
}
