package notifications

import (
	"errors"
	"fmt"
	"log"
	"sort"

	"github.com/trackline-dev/trackline/internal/models"
	"gorm.io/gorm"
)

type EventKind string

const (
	IssueCreated       EventKind = "issue_created"
	IssueStatusChanged EventKind = "issue_status_changed"
	CommentCreated     EventKind = "comment_created"
	ProjectCreated     EventKind = "project_created"
	ProjectUpdated     EventKind = "project_updated"
)

var (
	ErrMissingProject = errors.New("event requires a project")
	ErrMissingIssue   = errors.New("event requires an issue")
	ErrUnknownKind    = errors.New("unknown event kind")
)

// Event describes an entity mutation that may notify other users.
// Project must carry preloaded Members and Issue preloaded Assignees;
// recipient computation never touches the store.
type Event struct {
	Kind    EventKind
	ActorID uint
	Project *models.Project
	Issue   *models.Issue
}

func (e Event) validate() error {
	switch e.Kind {
	case ProjectCreated, ProjectUpdated:
		if e.Project == nil {
			return ErrMissingProject
		}
	case IssueCreated:
		if e.Issue == nil {
			return ErrMissingIssue
		}
		if e.Project == nil {
			return ErrMissingProject
		}
	case IssueStatusChanged, CommentCreated:
		if e.Issue == nil {
			return ErrMissingIssue
		}
	default:
		return ErrUnknownKind
	}

	return nil
}

// Recipients computes the deduplicated set of user IDs to notify,
// always excluding the acting user. Returned IDs are sorted.
func Recipients(event Event) ([]uint, error) {
	if err := event.validate(); err != nil {
		return nil, err
	}

	set := make(map[uint]struct{})

	switch event.Kind {
	case IssueCreated, ProjectUpdated:
		// Project members plus the owner, who counts as a member here
		// even when absent from the members set.
		for _, member := range event.Project.Members {
			set[member.ID] = struct{}{}
		}
		set[event.Project.OwnerID] = struct{}{}
	case ProjectCreated:
		// Members only: the owner is the one creating the project.
		for _, member := range event.Project.Members {
			set[member.ID] = struct{}{}
		}
	case IssueStatusChanged, CommentCreated:
		for _, assignee := range event.Issue.Assignees {
			set[assignee.ID] = struct{}{}
		}
		if event.Issue.ReporterID != nil {
			set[*event.Issue.ReporterID] = struct{}{}
		}
	}

	delete(set, event.ActorID)

	recipients := make([]uint, 0, len(set))

	for id := range set {
		recipients = append(recipients, id)
	}

	sort.Slice(recipients, func(i, j int) bool { return recipients[i] < recipients[j] })

	return recipients, nil
}

func (e Event) notificationType() models.NotificationType {
	switch e.Kind {
	case IssueCreated:
		return models.NotificationIssueAssigned
	case IssueStatusChanged:
		return models.NotificationIssueStatusChanged
	case CommentCreated:
		return models.NotificationIssueCommented
	case ProjectCreated:
		return models.NotificationProjectJoined
	default:
		return models.NotificationGeneral
	}
}

func (e Event) message() string {
	switch e.Kind {
	case IssueCreated:
		return fmt.Sprintf("New issue '%s' in project '%s'", e.Issue.Title, e.Project.Name)
	case IssueStatusChanged:
		return fmt.Sprintf("Issue '%s' status changed to %s", e.Issue.Title, e.Issue.Status)
	case CommentCreated:
		return fmt.Sprintf("New comment on issue '%s'", e.Issue.Title)
	case ProjectCreated:
		return fmt.Sprintf("You have been added to project '%s'", e.Project.Name)
	default:
		return fmt.Sprintf("Project '%s' has been updated", e.Project.Name)
	}
}

// Dispatch writes one notification row per recipient. Each insert is
// independent and best effort: a failed write is logged and skipped, never
// retried, so a notification failure cannot affect the already committed
// mutation that triggered it. Returns the number of rows written.
func Dispatch(db *gorm.DB, event Event) (int, error) {
	recipients, err := Recipients(event)

	if err != nil {
		return 0, err
	}

	actorID := event.ActorID
	created := 0

	for _, recipientID := range recipients {
		notification := models.Notification{
			RecipientID: recipientID,
			ActorID:     &actorID,
			Type:        event.notificationType(),
			Message:     event.message(),
		}

		if err := db.Create(&notification).Error; err != nil {
			log.Printf("Failed to create %s notification for user %d: %v", event.Kind, recipientID, err)
			continue
		}

		created++
	}

	return created, nil
}
