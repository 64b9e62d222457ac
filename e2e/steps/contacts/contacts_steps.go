//go:build e2e

package contacts

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cucumber/godog"
)

// TestContext is the part of the scenario context these steps use.
type TestContext interface {
	GET(path string) error
	POST(path string, body any) error
	PUT(path string, body any) error
	DELETE(path string) error
	LastStatus() int
	ResponseField(field string) (any, error)
	ResponseList() ([]map[string]any, error)
	Save(name, value string)
	Saved(name string) (string, error)
}

// RegisterSteps registers contact CRUD and birthday steps.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &contactSteps{tc: tc}

	ctx.Step(`^I create a contact "([^"]*)" "([^"]*)" born on "([^"]*)"$`, steps.createBornOn)
	ctx.Step(`^I create a contact "([^"]*)" "([^"]*)" born (-?\d+) days from today$`, steps.createBornInDays)
	ctx.Step(`^I create a contact with:$`, steps.createWithTable)
	ctx.Step(`^I save the contact id as "([^"]*)"$`, steps.saveContactID)

	ctx.Step(`^I fetch contact "([^"]*)"$`, steps.fetch)
	ctx.Step(`^I rename contact "([^"]*)" to "([^"]*)" "([^"]*)"$`, steps.rename)
	ctx.Step(`^I delete contact "([^"]*)"$`, steps.remove)
	ctx.Step(`^I list my contacts$`, steps.list)
	ctx.Step(`^I list my contacts with last name "([^"]*)"$`, steps.listByLastName)
	ctx.Step(`^I list upcoming birthdays$`, steps.upcoming)

	ctx.Step(`^the contacts should include "([^"]*)"$`, steps.shouldInclude)
	ctx.Step(`^the contacts should not include "([^"]*)"$`, steps.shouldNotInclude)
}

type contactSteps struct {
	tc TestContext
}

func contactBody(name, lastName, born string) map[string]any {
	return map[string]any{
		"name":       name,
		"last_name":  lastName,
		"email":      strings.ToLower(name) + "@example.com",
		"phone":      "+44 20 7946 0000",
		"birth_date": born,
	}
}

func (s *contactSteps) createBornOn(_ context.Context, name, lastName, born string) error {
	return s.tc.POST("/contacts", contactBody(name, lastName, born))
}

// createBornInDays uses a leap year so every calendar day is representable.
func (s *contactSteps) createBornInDays(_ context.Context, name, lastName string, days int) error {
	day := time.Now().UTC().AddDate(0, 0, days)
	born := time.Date(1992, day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	return s.tc.POST("/contacts", contactBody(name, lastName, born.Format(time.DateOnly)))
}

func (s *contactSteps) createWithTable(_ context.Context, table *godog.Table) error {
	body := make(map[string]any, len(table.Rows))
	for _, row := range table.Rows {
		if len(row.Cells) != 2 {
			return fmt.Errorf("expected field | value rows")
		}
		body[row.Cells[0].Value] = row.Cells[1].Value
	}
	return s.tc.POST("/contacts", body)
}

func (s *contactSteps) saveContactID(_ context.Context, name string) error {
	v, err := s.tc.ResponseField("id")
	if err != nil {
		return err
	}
	s.tc.Save(name, fmt.Sprint(v))
	return nil
}

func (s *contactSteps) path(name string) (string, error) {
	contactID, err := s.tc.Saved(name)
	if err != nil {
		return "", err
	}
	return "/contacts/" + contactID, nil
}

func (s *contactSteps) fetch(_ context.Context, name string) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	return s.tc.GET(path)
}

func (s *contactSteps) rename(_ context.Context, name, first, last string) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	if err := s.tc.GET(path); err != nil {
		return err
	}
	if s.tc.LastStatus() != http.StatusOK {
		return fmt.Errorf("fetch before rename returned %d", s.tc.LastStatus())
	}
	body := make(map[string]any)
	for _, field := range []string{"email", "phone", "birth_date"} {
		v, err := s.tc.ResponseField(field)
		if err != nil {
			return err
		}
		body[field] = v
	}
	body["name"] = first
	body["last_name"] = last
	return s.tc.PUT(path, body)
}

func (s *contactSteps) remove(_ context.Context, name string) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	return s.tc.DELETE(path)
}

func (s *contactSteps) list(context.Context) error {
	return s.tc.GET("/contacts")
}

func (s *contactSteps) listByLastName(_ context.Context, lastName string) error {
	return s.tc.GET("/contacts?last_name=" + lastName)
}

func (s *contactSteps) upcoming(context.Context) error {
	return s.tc.GET("/contacts/birthdays")
}

func (s *contactSteps) names() ([]string, error) {
	list, err := s.tc.ResponseList()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(list))
	for _, c := range list {
		names = append(names, fmt.Sprint(c["name"]))
	}
	return names, nil
}

func (s *contactSteps) shouldInclude(_ context.Context, name string) error {
	names, err := s.names()
	if err != nil {
		return err
	}
	for _, n := range names {
		if n == name {
			return nil
		}
	}
	return fmt.Errorf("%q not in %v", name, names)
}

func (s *contactSteps) shouldNotInclude(_ context.Context, name string) error {
	names, err := s.names()
	if err != nil {
		return err
	}
	for _, n := range names {
		if n == name {
			return fmt.Errorf("%q unexpectedly in %v", name, names)
		}
	}
	return nil
}
