// Package chat implements the data-grounded assistant: colon-format commands
// are executed directly, everything else is answered by the text backend with
// a system message composed from live platform data.
package chat

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"volunteen/genai"
	"volunteen/models"
)

// Narrow read-side views of the repositories; the full repository types
// satisfy them.
type EventSource interface {
	GetAll() ([]models.Event, error)
	ListByOrganizer(userID string) ([]models.Event, error)
	ListJoined(userID string) ([]models.Event, error)
}

type PostSource interface {
	List() ([]models.Post, error)
}

type UserSource interface {
	GetByID(id string) (models.User, error)
}

type Assistant struct {
	AI     genai.Client
	Events EventSource
	Posts  PostSource
	Users  UserSource

	// JoinEvent and CreateEvent are supplied by the HTTP layer so chat
	// commands run through the same code path (side effects included) as the
	// regular endpoints.
	JoinEvent   func(eventID, userID string) error
	CreateEvent func(e *models.Event, userID string) error
}

var (
	registerKeywords = regexp.MustCompile(`(?i)\b(register( for event)?|sign me up|sign me|put me in|add me|enroll|sign up|join|subscribe|opt in|count me in|reserve|volunteer|include me|book me)\b`)
	organizeKeywords = regexp.MustCompile(`(?i)\b(organize|create|arrange|plan|set up|establish|coordinate|initiate|put together)\b`)
)

const registerUsage = "To register for an event, please use the following format:\n\n`register for event: Event Name`\n\nFor example:\n`register for event: Beach Cleanup`"

const organizeUsage = "To organize an event, please use the following format:\n\n`organize event: event name, organization, description, location, date, time, type, spots left, organizer name, organizer email, organizer phone, (optional) instructions`"

// Respond answers one chat message for userID (empty when not logged in).
func (a *Assistant) Respond(userText, userID string) (string, error) {
	if reply, handled := a.processCommand(userText, userID); handled {
		return reply, nil
	}

	system, err := a.buildSystemMessage(userID)
	if err != nil {
		return "", err
	}
	return a.AI.Generate(userText, system)
}

// processCommand recognizes the register/organize commands. Keyword matches
// without the colon format get usage guidance; anything else falls through to
// generation.
func (a *Assistant) processCommand(message, userID string) (string, bool) {
	message = strings.TrimSpace(message)
	hasColon := strings.Contains(message, ":")

	if registerKeywords.MatchString(message) && !hasColon {
		return registerUsage, true
	}
	if organizeKeywords.MatchString(message) && !hasColon {
		return organizeUsage, true
	}

	if strings.Contains(strings.ToLower(message), "register for event") {
		return a.handleRegister(message, userID), true
	}
	if organizeKeywords.MatchString(message) && hasColon {
		return a.handleOrganize(message, userID), true
	}
	return "", false
}

func (a *Assistant) handleRegister(message, userID string) string {
	_, arg, ok := strings.Cut(message, ":")
	name := strings.TrimSpace(arg)
	if !ok || name == "" {
		return registerUsage
	}
	if userID == "" {
		return "Please log in to register for an event."
	}

	all, err := a.Events.GetAll()
	if err != nil {
		return "Could not look up events right now. Please try again later."
	}

	for _, ev := range all {
		if strings.EqualFold(ev.Name, name) {
			if err := a.JoinEvent(ev.ID, userID); err != nil {
				return "Could not register you: " + err.Error()
			}
			return fmt.Sprintf("You have been registered for event: %s", ev.Name)
		}
	}

	var similar []models.Event
	for _, ev := range all {
		if strings.Contains(strings.ToLower(ev.Name), strings.ToLower(name)) {
			similar = append(similar, ev)
		}
	}
	if len(similar) == 0 {
		return fmt.Sprintf("No events found matching %q. Please check the event name and try again.", name)
	}

	sort.Slice(similar, func(i, j int) bool { return similar[i].Date < similar[j].Date })
	var b strings.Builder
	fmt.Fprintf(&b, "No exact match found for %q. Did you mean one of these?\n", name)
	for _, ev := range similar {
		fmt.Fprintf(&b, "• %s (Date: %s, Location: %s)\n", ev.Name, ev.Date, ev.Location)
	}
	return b.String()
}

func (a *Assistant) handleOrganize(message, userID string) string {
	_, arg, ok := strings.Cut(message, ":")
	if !ok || strings.TrimSpace(arg) == "" {
		return organizeUsage
	}
	if userID == "" {
		return "Please log in to organize an event."
	}

	details := strings.Split(arg, ",")
	if len(details) < 11 {
		return "Incorrect format for organizing an event. Please provide all required details.\n" + organizeUsage
	}
	for i := range details {
		details[i] = strings.TrimSpace(details[i])
	}

	spots, _ := strconv.Atoi(details[7])
	e := models.Event{
		Name:           details[0],
		Organization:   details[1],
		Description:    details[2],
		Location:       details[3],
		Date:           details[4],
		Time:           details[5],
		Type:           details[6],
		SpotsRemaining: spots,
		OrganizerName:  details[8],
		OrganizerEmail: details[9],
		OrganizerPhone: details[10],
		MinAge:         10,
	}
	if len(details) >= 12 {
		e.Instructions = details[11]
	}
	if len(details) >= 13 {
		if age, err := strconv.Atoi(details[12]); err == nil {
			e.MinAge = age
		}
	}

	if err := a.CreateEvent(&e, userID); err != nil {
		return "There was an error organizing your event."
	}
	return fmt.Sprintf("Your event %q has been organized successfully!", e.Name)
}

// buildSystemMessage assembles the grounding context: every event with its
// roster summary, the community posts, and (when logged in) the caller's own
// profile and event history.
func (a *Assistant) buildSystemMessage(userID string) (string, error) {
	events, err := a.Events.GetAll()
	if err != nil {
		return "", err
	}

	var eventsStr strings.Builder
	for _, e := range events {
		fmt.Fprintf(&eventsStr, `• Event Name: %s
 - Organization: %s
 - Date: %s
 - Time: %s
 - Location: %s
 - Type: %s
 - Spots Left: %d
 - Description: %s
 - Instructions: %s
 - Minimum Age: %d
 - Organizer: %s (%s, %s)
 - Participants: %s

`, orNA(e.Name), orNA(e.Organization), orNA(e.Date), orNA(e.Time), orNA(e.Location),
			orNA(e.Type), e.SpotsRemaining, orNA(e.Description), orNA(e.Instructions),
			e.MinAge, orNA(e.OrganizerName), orNA(e.OrganizerEmail), orNA(e.OrganizerPhone),
			participantSummary(e))
	}

	var postsStr strings.Builder
	if posts, err := a.Posts.List(); err == nil {
		for i, p := range posts {
			fmt.Fprintf(&postsStr, "• Post #%d by %s: %q\n", i+1, orNA(p.AuthorName), p.Content)
		}
	}

	var userSection string
	if userID != "" {
		if u, err := a.Users.GetByID(userID); err == nil {
			organized, _ := a.Events.ListByOrganizer(userID)
			joined, _ := a.Events.ListJoined(userID)
			userSection = fmt.Sprintf(`
======== USER PROFILE & EVENTS =========
Name: %s %s
Email: %s
Total Hours: %g
Description: %s
Organization: %s
Organized Events: %s
Joined Events: %s
`, u.FirstName, u.LastName, u.Email, u.VolunteerHours, u.Description, u.Organization,
				eventNames(organized), eventNames(joined))
		}
	}

	return fmt.Sprintf(`You are a helpful volunteering chatbot for the Volunteen website.
**Important**: If the user asks about anything other than volunteering events, participants, or their user data, you must refuse to answer.
Only respond if the question is about:
- volunteering events (with name, date, time, location, instructions, organizer, etc.)
- participants
- the user's own profile & hours
- or community posts from the data

======== ALL EVENTS =========
%s
======== COMMUNITY POSTS =========
%s%s`, orText(eventsStr.String(), "No events found."), orText(postsStr.String(), "No community posts found.\n"), userSection), nil
}

func participantSummary(e models.Event) string {
	if len(e.Participants) == 0 {
		return "No participants yet"
	}
	names := make([]string, 0, len(e.Participants))
	for _, p := range e.Participants {
		names = append(names, fmt.Sprintf("%s %s (%s)", p.FirstName, p.LastName, p.Email))
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func eventNames(events []models.Event) string {
	if len(events) == 0 {
		return "None"
	}
	names := make([]string, 0, len(events))
	for _, e := range events {
		names = append(names, orNA(e.Name))
	}
	return strings.Join(names, ", ")
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func orText(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
