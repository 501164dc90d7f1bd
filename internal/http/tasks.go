package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/circulation/internal/tasks"
)

var taskStatusNames = map[backlite.TaskStatus]string{
	backlite.TaskStatusPending:  "pending",
	backlite.TaskStatusRunning:  "running",
	backlite.TaskStatusSuccess:  "success",
	backlite.TaskStatusFailure:  "failure",
	backlite.TaskStatusNotFound: "not_found",
}

type TaskTypeResponse struct {
	tasks.TaskType
	Registered bool `json:"registered"`
}

// TasksController lets staff inspect and trigger the circulation scans.
type TasksController struct {
	client *tasks.Client
}

func NewTasksController(client *tasks.Client) *TasksController {
	return &TasksController{client: client}
}

// ListTaskTypes handles GET /api/tasks/types
func (tc *TasksController) ListTaskTypes(c *gin.Context) {
	types := tasks.TaskTypes()
	resp := make([]TaskTypeResponse, 0, len(types))
	for _, t := range types {
		resp = append(resp, TaskTypeResponse{TaskType: t, Registered: tc.client.Registered(t.Type)})
	}
	c.JSON(http.StatusOK, gin.H{"task_types": resp})
}

// GetTaskStatus handles GET /api/tasks/:id
func (tc *TasksController) GetTaskStatus(c *gin.Context) {
	id := c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status, err := tc.client.Status(ctx, id)
	if err != nil {
		respondInternalError(c, err, "task status")
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "status": taskStatusToString(status)})
}

// RunTask handles POST /api/tasks/:type/run?as_of=YYYY-MM-DD. as_of only
// applies to overdue_scan.
func (tc *TasksController) RunTask(c *gin.Context) {
	name := c.Param("type")
	if !tc.client.Registered(name) {
		respondBadRequest(c, "unknown task type: "+name)
		return
	}
	asOf, ok := parseDateQuery(c, "as_of", time.Time{})
	if !ok {
		return
	}

	task, err := tasks.NewTask(name, asOf)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	id, err := tc.client.Enqueue(task)
	if err != nil {
		respondInternalError(c, err, "enqueue "+name)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"task_id": id, "type": name})
}

func taskStatusToString(status backlite.TaskStatus) string {
	if name, ok := taskStatusNames[status]; ok {
		return name
	}
	return "unknown"
}
