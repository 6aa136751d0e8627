package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/taskify/taskify-api/internal/domain"
	"github.com/taskify/taskify-api/internal/events"
	"github.com/taskify/taskify-api/internal/platform/mailer"
	"github.com/taskify/taskify-api/internal/store"
)

// TypeAssignmentNotification identifies jobs built by AssignmentNotifier.
const TypeAssignmentNotification = "assignment_notification"

const assignmentTitle = "New task assigned"

// AssignmentNotifier builds jobs that tell a user they were assigned a task:
// an in-app notification followed by an email.
type AssignmentNotifier struct {
	users         store.UserStore
	notifications store.NotificationStore
	mailer        mailer.Mailer
	baseURL       string
	logger        *slog.Logger
}

// NewAssignmentNotifier creates an AssignmentNotifier. baseURL, when set,
// turns board links in emails into absolute URLs.
func NewAssignmentNotifier(
	users store.UserStore,
	notifications store.NotificationStore,
	m mailer.Mailer,
	baseURL string,
	logger *slog.Logger,
) *AssignmentNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &AssignmentNotifier{
		users:         users,
		notifications: notifications,
		mailer:        m,
		baseURL:       strings.TrimRight(baseURL, "/"),
		logger:        logger.With(slog.String("component", "assignment_notifier")),
	}
}

// Job returns the job for one assignment.
func (n *AssignmentNotifier) Job(p events.TaskAssigned) Job {
	return &assignmentJob{id: uuid.New(), notifier: n, payload: p}
}

type assignmentJob struct {
	id       uuid.UUID
	notifier *AssignmentNotifier
	payload  events.TaskAssigned
}

func (j *assignmentJob) ID() uuid.UUID { return j.id }

func (j *assignmentJob) Type() string { return TypeAssignmentNotification }

// Execute stores the notification, then sends the email. An assignee that
// no longer exists is skipped.
func (j *assignmentJob) Execute(ctx context.Context) error {
	n := j.notifier
	p := j.payload
	log := n.logger.With(
		slog.String("task_id", p.TaskID.String()),
		slog.String("assignee_id", p.AssigneeID.String()))

	assignee, err := n.users.GetByID(ctx, p.AssigneeID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			log.Warn("assignee no longer exists, skipping notification")
			return nil
		}
		return fmt.Errorf("failed to load assignee: %w", err)
	}

	link := "/boards/" + p.BoardID.String()
	message := fmt.Sprintf("You were assigned the task %q in project %s", p.TaskTitle, p.ProjectName)
	notification, err := domain.NewNotification(
		assignee.ID, domain.NotificationTaskAssigned, assignmentTitle, message, &link)
	if err != nil {
		return fmt.Errorf("failed to build notification: %w", err)
	}
	if err := n.notifications.Create(ctx, notification); err != nil {
		return fmt.Errorf("failed to store notification: %w", err)
	}

	email := mailer.AssignmentEmail(
		assignee.Email, assignee.Name, p.ActorName, p.TaskTitle, p.ProjectName, n.absolute(link))
	if err := n.mailer.Send(ctx, email); err != nil {
		return fmt.Errorf("failed to send assignment email: %w", err)
	}

	log.Info("assignment notification delivered",
		slog.String("notification_id", notification.ID.String()))
	return nil
}

func (n *AssignmentNotifier) absolute(path string) string {
	if n.baseURL == "" {
		return ""
	}
	return n.baseURL + path
}
