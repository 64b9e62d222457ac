package handler

import "contactbook/internal/contacts/models"

// ContactResponse mirrors ContactRequest plus the assigned id.
type ContactResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	BirthDate string `json:"birth_date"`
}

func toContactResponse(c *models.Contact) ContactResponse {
	return ContactResponse{
		ID:        c.ID.String(),
		Name:      c.Name,
		LastName:  c.LastName,
		Email:     c.Email,
		Phone:     c.Phone,
		BirthDate: c.BirthDate.Format(dateLayout),
	}
}

func toContactResponses(contacts []*models.Contact) []ContactResponse {
	out := make([]ContactResponse, 0, len(contacts))
	for _, c := range contacts {
		out = append(out, toContactResponse(c))
	}
	return out
}
