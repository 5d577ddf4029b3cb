package handlers

import (
	"task-tracker/models"
	"task-tracker/validation"
)

// Descriptions and comments are stored as written so search sees the real
// text. Markup is cleaned where it leaves the API.

func cleanTask(t *models.Task) {
	t.Description = validation.Sanitize(t.Description)
}

func cleanTasks(views []models.TaskView) {
	for i := range views {
		cleanTask(&views[i].Task)
	}
}

func cleanComments(comments []models.CommentView) {
	for i := range comments {
		comments[i].Content = validation.Sanitize(comments[i].Content)
	}
}

func cleanDetail(d *models.TaskDetail) {
	cleanTask(&d.Task)
	cleanComments(d.Comments)
}
