package db

import (
	"github.com/rs/zerolog/log"

	"github.com/christopherlanz-debug/dsV2/internal/model"
)

func (s *pgStore) CreateContent(title, contentType, url string, mimeType *string, duration int, pageCount *int, createdBy int) (model.Content, error) {
	var c model.Content
	const q = `
	INSERT INTO content (title, type, url, mime_type, duration, page_count, created_by, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
	RETURNING id, title, type, url, mime_type, duration, page_count, created_by, created_at, updated_at;`
	if err := s.db.Get(&c, q, title, contentType, url, mimeType, duration, pageCount, createdBy); err != nil {
		log.Error().Err(err).Msg("[db] CreateContent: failed to insert content")
		return model.Content{}, err
	}
	return c, nil
}

func (s *pgStore) GetContentByID(id int) (model.Content, error) {
	var c model.Content
	const q = `
	SELECT id, title, type, url, mime_type, duration, page_count, created_by, created_at, updated_at
	  FROM content
	 WHERE id = $1;`
	if err := s.db.Get(&c, q, id); err != nil {
		return model.Content{}, err
	}
	items, err := s.ListContentItems(id)
	if err != nil {
		return model.Content{}, err
	}
	c.Items = items
	return c, nil
}

func (s *pgStore) ListContent() ([]model.Content, error) {
	var out []model.Content
	const q = `
	SELECT id, title, type, url, mime_type, duration, page_count, created_by, created_at, updated_at
	  FROM content
	 ORDER BY id;`
	if err := s.db.Select(&out, q); err != nil {
		log.Error().Err(err).Msg("[db] ListContent: failed to select content")
		return nil, err
	}
	return out, nil
}

func (s *pgStore) DeleteContent(id int) error {
	_, err := s.db.Exec(`DELETE FROM content WHERE id = $1;`, id)
	if err != nil {
		log.Error().Err(err).Int("content_id", id).Msg("[db] DeleteContent failed")
	}
	return err
}

func (s *pgStore) CreateContentItem(contentID, itemNumber int, url string, mimeType *string, duration int) (model.ContentItem, error) {
	var it model.ContentItem
	const q = `
	INSERT INTO content_items (content_id, item_number, url, mime_type, duration, created_at)
	VALUES ($1, $2, $3, $4, $5, now())
	RETURNING id, content_id, item_number, url, mime_type, duration, created_at;`
	if err := s.db.Get(&it, q, contentID, itemNumber, url, mimeType, duration); err != nil {
		log.Error().Err(err).Int("content_id", contentID).Msg("[db] CreateContentItem failed")
		return model.ContentItem{}, err
	}
	return it, nil
}

func (s *pgStore) GetContentItemByID(id int) (model.ContentItem, error) {
	var it model.ContentItem
	const q = `
	SELECT id, content_id, item_number, url, mime_type, duration, created_at
	  FROM content_items
	 WHERE id = $1;`
	if err := s.db.Get(&it, q, id); err != nil {
		return model.ContentItem{}, err
	}
	return it, nil
}

func (s *pgStore) ListContentItems(contentID int) ([]model.ContentItem, error) {
	var out []model.ContentItem
	const q = `
	SELECT id, content_id, item_number, url, mime_type, duration, created_at
	  FROM content_items
	 WHERE content_id = $1
	 ORDER BY item_number;`
	if err := s.db.Select(&out, q, contentID); err != nil {
		log.Error().Err(err).Int("content_id", contentID).Msg("[db] ListContentItems failed")
		return nil, err
	}
	return out, nil
}
