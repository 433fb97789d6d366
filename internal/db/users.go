package db

import (
	"github.com/rs/zerolog/log"

	"github.com/christopherlanz-debug/dsV2/internal/model"
)

func (s *pgStore) CreateUser(email, hashedPassword string, name *string) (int, error) {
	var id int
	const q = `
	INSERT INTO users (email, hashed_password, name, created_at, updated_at)
	VALUES ($1, $2, $3, now(), now())
	RETURNING id;`
	if err := s.db.Get(&id, q, email, hashedPassword, name); err != nil {
		log.Error().Err(err).Msg("[db] CreateUser: failed to insert user")
		return 0, err
	}
	return id, nil
}

func (s *pgStore) GetUserByEmail(email string) (*model.User, error) {
	var u model.User
	const q = `
	SELECT id, email, hashed_password, name, is_admin, created_at, updated_at
	  FROM users
	 WHERE email = $1;`
	if err := s.db.Get(&u, q, email); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *pgStore) GetUserByID(id int) (*model.User, error) {
	var u model.User
	const q = `
	SELECT id, email, hashed_password, name, is_admin, created_at, updated_at
	  FROM users
	 WHERE id = $1;`
	if err := s.db.Get(&u, q, id); err != nil {
		return nil, err
	}
	return &u, nil
}
