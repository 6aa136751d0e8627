// Package app assembles the stores and services of the API from their
// SQL implementations.
package app

import (
	"database/sql"

	"github.com/taskify/taskify-api/internal/platform/sqlstore"
	"github.com/taskify/taskify-api/internal/service"
	"github.com/taskify/taskify-api/internal/service/auth"
	"github.com/taskify/taskify-api/internal/store"
)

// NewStores returns the SQL-backed stores and sibling lists for db.
func NewStores(db *sql.DB, bcryptCost int) service.Stores {
	return service.Stores{
		Users:         sqlstore.NewUserStore(db, bcryptCost),
		Projects:      sqlstore.NewProjectStore(db),
		Boards:        sqlstore.NewBoardStore(db),
		Columns:       sqlstore.NewColumnStore(db),
		Tasks:         sqlstore.NewTaskStore(db),
		Labels:        sqlstore.NewLabelStore(db),
		Notifications: sqlstore.NewNotificationStore(db),
		Ownership:     sqlstore.NewOwnershipStore(db),
		TaskList:      sqlstore.NewTaskList,
		ColumnList:    sqlstore.NewColumnList,
	}
}

// Services bundles every application service.
type Services struct {
	Users         service.UserService
	Projects      service.ProjectService
	Boards        service.BoardService
	Columns       service.ColumnService
	Tasks         service.TaskService
	Labels        service.LabelService
	Notifications service.NotificationService
}

// NewServices creates all services over the shared deps. A nil verifier
// selects bcrypt.
func NewServices(d service.Deps, tokens auth.JWTService, verifier auth.PasswordVerifier) Services {
	return Services{
		Users:         service.NewUserService(d, tokens, verifier),
		Projects:      service.NewProjectService(d),
		Boards:        service.NewBoardService(d),
		Columns:       service.NewColumnService(d),
		Tasks:         service.NewTaskService(d),
		Labels:        service.NewLabelService(d),
		Notifications: service.NewNotificationService(d),
	}
}

// TxOptions are the transaction options every service call uses with the
// SQL stores.
func TxOptions() []store.TxOption {
	return []store.TxOption{store.WithCommitErrorMapper(sqlstore.MapError)}
}
