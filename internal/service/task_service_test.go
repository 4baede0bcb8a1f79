package service

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
)

func TestCreateAndGetTask(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	creator := f.mustRegister(t, "C1", "")
	alice := f.mustRegister(t, "U1", "")

	task := f.mustCreateTask(t, creator.ID, "T1", []uint{alice.ID})

	view, err := f.tasks.Get(ctx, task.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if view.Title != "T1" || view.CreatorID != creator.ID {
		t.Errorf("got title %q creator %d", view.Title, view.CreatorID)
	}
	if len(view.Users) != 1 || view.Users[0].Name != alice.Name {
		t.Errorf("resolved users = %+v, want one entry named %q", view.Users, alice.Name)
	}

	if _, err := f.tasks.Get(ctx, 9999); !errors.Is(err, ErrNotFound) {
		t.Errorf("get absent: err = %v, want ErrNotFound", err)
	}
}

func TestCreateTaskRequiresTitle(t *testing.T) {
	f := newFixture(t)
	creator := f.mustRegister(t, "C1", "")

	if _, err := f.tasks.Create(context.Background(), creator.ID, TaskInput{}); !errors.Is(err, ErrInvalid) {
		t.Errorf("err = %v, want ErrInvalid", err)
	}
}

func TestListActiveExcludesArchived(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	creator := f.mustRegister(t, "C1", "")

	f.mustCreateTask(t, creator.ID, "live", nil)
	archived := f.mustCreateTask(t, creator.ID, "archived", nil)

	yes := true
	if _, err := f.tasks.Update(ctx, archived.ID, TaskPatch{IsDeleted: &yes}); err != nil {
		t.Fatalf("archive: %v", err)
	}

	views, err := f.tasks.ListActive(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(views) != 1 || views[0].Title != "live" {
		t.Errorf("views = %+v, want only the live task", views)
	}
}

func TestListForUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	creator := f.mustRegister(t, "C1", "")
	alice := f.mustRegister(t, "U1", "")
	bob := f.mustRegister(t, "U2", "")

	task := f.mustCreateTask(t, creator.ID, "T1", []uint{alice.ID, bob.ID})
	f.mustCreateTask(t, creator.ID, "T2", []uint{bob.ID})

	// A subtask assigned to alice shows up under her task; one assigned only
	// to bob does not.
	if _, err := f.subtasks.Create(ctx, creator.ID, task.ID, TaskInput{Title: "S1", UserIDs: []uint{alice.ID}}); err != nil {
		t.Fatalf("create subtask: %v", err)
	}
	if _, err := f.subtasks.Create(ctx, creator.ID, task.ID, TaskInput{Title: "S2", UserIDs: []uint{bob.ID}}); err != nil {
		t.Fatalf("create subtask: %v", err)
	}

	result, err := f.tasks.ListForUser(ctx, alice.ID)
	if err != nil {
		t.Fatalf("list for user: %v", err)
	}
	if len(result) != 1 || result[0].ID != task.ID {
		t.Fatalf("result = %+v, want only task %d", result, task.ID)
	}
	if len(result[0].Subtasks) != 1 || result[0].Subtasks[0].Title != "S1" {
		t.Errorf("subtasks = %+v, want only S1", result[0].Subtasks)
	}

	ghost := uint(9999)
	if _, err := f.tasks.ListForUser(ctx, ghost); !errors.Is(err, ErrNotFound) {
		t.Errorf("no tasks: err = %v, want ErrNotFound", err)
	}
}

func TestUpdateTaskPatchSemantics(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	creator := f.mustRegister(t, "C1", "")

	task, err := f.tasks.Create(ctx, creator.ID, TaskInput{Title: "T1", Notes: "keep", Tags: []string{"a", "b"}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Absent fields stay; present empty values clear.
	empty := ""
	noTags := []string{}
	done := true
	updated, err := f.tasks.Update(ctx, task.ID, TaskPatch{Notes: &empty, Tags: &noTags, Completed: &done})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "T1" {
		t.Errorf("title changed to %q", updated.Title)
	}
	if updated.Notes != "" {
		t.Errorf("notes = %q, want cleared", updated.Notes)
	}
	if len(updated.Tags) != 0 {
		t.Errorf("tags = %v, want cleared", updated.Tags)
	}
	if !updated.Completed {
		t.Error("completed not applied")
	}

	if _, err := f.tasks.Update(ctx, 9999, TaskPatch{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("update absent: err = %v, want ErrNotFound", err)
	}
}

func TestDeleteTaskCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	creator := f.mustRegister(t, "C1", "")

	task := f.mustCreateTask(t, creator.ID, "T1", nil)
	subtask, err := f.subtasks.Create(ctx, creator.ID, task.ID, TaskInput{Title: "S1"})
	if err != nil {
		t.Fatalf("create subtask: %v", err)
	}
	comment, err := f.comments.CreateForTask(ctx, task.ID, creator.ID, "hello")
	if err != nil {
		t.Fatalf("create comment: %v", err)
	}
	subComment, err := f.comments.CreateForSubtask(ctx, subtask.ID, creator.ID, "hi")
	if err != nil {
		t.Fatalf("create subtask comment: %v", err)
	}

	if err := f.tasks.Delete(ctx, task.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := f.tasks.Get(ctx, task.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("task still fetchable: err = %v", err)
	}
	if _, err := f.subtasks.Get(ctx, subtask.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("subtask survived the cascade: err = %v", err)
	}
	if _, err := f.commentRepo.FindByID(ctx, comment.ID); err == nil {
		t.Error("task comment survived the cascade")
	}
	if _, err := f.commentRepo.FindByID(ctx, subComment.ID); err == nil {
		t.Error("subtask comment survived the cascade")
	}

	if err := f.tasks.Delete(ctx, task.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: err = %v, want ErrNotFound", err)
	}
}

func TestAttachAndDetachFile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	creator := f.mustRegister(t, "C1", "")
	task := f.mustCreateTask(t, creator.ID, "T1", nil)

	path, err := f.files.Store(strings.NewReader("content"), "report.txt")
	if err != nil {
		t.Fatalf("store: %v", err)
	}

	updated, err := f.tasks.AttachFiles(ctx, task.ID, []string{path})
	if err != nil {
		t.Fatalf("attach: %v", err)
	}
	if len(updated.Files) != 1 || updated.Files[0] != path {
		t.Fatalf("files = %v, want [%s]", updated.Files, path)
	}

	if err := f.tasks.DetachFile(ctx, task.ID, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("detach unknown path: err = %v, want ErrNotFound", err)
	}

	if err := f.tasks.DetachFile(ctx, task.ID, path); err != nil {
		t.Fatalf("detach: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("stored file still on disk: %v", err)
	}
	view, err := f.tasks.Get(ctx, task.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(view.Files) != 0 {
		t.Errorf("files = %v, want empty", view.Files)
	}
}
