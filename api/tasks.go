package main

import "context"

type taskService struct {
	storage *storage
}

func (s *taskService) create(ctx context.Context, description string, ownerID int) (*task, error) {
	v := newValidator()
	v.checkCond(description != "", "description", "Task description is too short!")
	if err := v.toError(); err != nil {
		return nil, err
	}

	t := &task{
		Description: description,
		AccountID:   ownerID,
	}
	if err := s.storage.insertTask(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *taskService) get(ctx context.Context, id, callerID int) (*task, error) {
	t, err := s.storage.getTaskByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, errNotFound
	}
	if err := assertOwner(t, callerID); err != nil {
		return nil, err
	}
	return t, nil
}

// toggle flips the completion flag. Two toggles restore the previous value.
func (s *taskService) toggle(ctx context.Context, id, callerID int) (*task, error) {
	t, err := s.get(ctx, id, callerID)
	if err != nil {
		return nil, err
	}
	t.Completed = !t.Completed
	if err := s.storage.updateTaskCompleted(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *taskService) delete(ctx context.Context, id, callerID int) error {
	t, err := s.get(ctx, id, callerID)
	if err != nil {
		return err
	}
	return s.storage.deleteTask(ctx, t)
}

func (s *taskService) listFor(ctx context.Context, ownerID int) ([]task, error) {
	return s.storage.tasksFor(ctx, ownerID)
}
