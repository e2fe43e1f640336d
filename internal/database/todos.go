package database

import (
	"database/sql"
	"errors"
	"time"
)

// ListTodos returns the owner's todos in creation order. Rows belonging
// to any other user are never returned.
func (s *Store) ListTodos(ownerID int64) ([]*Todo, error) {
	rows, err := s.db.Query(
		s.rebind("SELECT id, user_id, title, description, due_date, created_at FROM todos WHERE user_id = ? ORDER BY id"),
		ownerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	todos := []*Todo{}
	for rows.Next() {
		todo := &Todo{}
		if err := rows.Scan(&todo.ID, &todo.OwnerID, &todo.Title, &todo.Description, &todo.DueDate, &todo.CreatedAt); err != nil {
			return nil, err
		}
		todos = append(todos, todo)
	}
	return todos, rows.Err()
}

// GetTodo retrieves a single todo scoped to its owner.
func (s *Store) GetTodo(id, ownerID int64) (*Todo, error) {
	todo := &Todo{}
	err := s.db.QueryRow(
		s.rebind("SELECT id, user_id, title, description, due_date, created_at FROM todos WHERE id = ? AND user_id = ?"),
		id, ownerID,
	).Scan(&todo.ID, &todo.OwnerID, &todo.Title, &todo.Description, &todo.DueDate, &todo.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTodoNotFound
	}
	if err != nil {
		return nil, err
	}
	return todo, nil
}

// CreateTodo inserts a new todo owned by ownerID.
func (s *Store) CreateTodo(ownerID int64, title, description, dueDate string) (*Todo, error) {
	todo := &Todo{
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
		DueDate:     dueDate,
		CreatedAt:   time.Now(),
	}

	id, err := s.insertID(
		"INSERT INTO todos (user_id, title, description, due_date, created_at) VALUES (?, ?, ?, ?, ?)",
		todo.OwnerID, todo.Title, todo.Description, todo.DueDate, todo.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	todo.ID = id
	return todo, nil
}

// UpdateTodo applies new field values to a todo. The statement filters
// by both id and owner, so a todo that doesn't exist and a todo owned
// by someone else fail identically with ErrTodoNotFound.
func (s *Store) UpdateTodo(id, ownerID int64, title, description, dueDate string) (*Todo, error) {
	result, err := s.db.Exec(
		s.rebind("UPDATE todos SET title = ?, description = ?, due_date = ? WHERE id = ? AND user_id = ?"),
		title, description, dueDate, id, ownerID,
	)
	if err != nil {
		return nil, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, ErrTodoNotFound
	}

	return s.GetTodo(id, ownerID)
}

// DeleteTodo removes a todo, with the same ownership opacity as
// UpdateTodo.
func (s *Store) DeleteTodo(id, ownerID int64) error {
	result, err := s.db.Exec(
		s.rebind("DELETE FROM todos WHERE id = ? AND user_id = ?"),
		id, ownerID,
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrTodoNotFound
	}
	return nil
}
