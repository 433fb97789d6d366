package db

import (
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/christopherlanz-debug/dsV2/internal/model"
)

// MemStore is an in-memory Store used by handler and engine tests. It mirrors
// the pgStore's semantics: dense playlist positions, sql.ErrNoRows on missing
// rows, and cascades on playlist and content deletion.
type MemStore struct {
	mu sync.Mutex

	nextID int

	users         map[int]model.User
	content       map[int]model.Content
	contentItems  map[int]model.ContentItem
	playlists     map[int]model.Playlist
	playlistItems map[int]model.PlaylistItem
	schedules     map[int]model.PlaylistSchedule
	screens       map[int]model.Screen
}

var _ Store = (*MemStore)(nil)

func NewMemStore() *MemStore {
	return &MemStore{
		users:         make(map[int]model.User),
		content:       make(map[int]model.Content),
		contentItems:  make(map[int]model.ContentItem),
		playlists:     make(map[int]model.Playlist),
		playlistItems: make(map[int]model.PlaylistItem),
		schedules:     make(map[int]model.PlaylistSchedule),
		screens:       make(map[int]model.Screen),
	}
}

func (m *MemStore) id() int {
	m.nextID++
	return m.nextID
}

// ---- users ----

func (m *MemStore) CreateUser(email, hashedPassword string, name *string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return 0, fmt.Errorf("email %q already registered", email)
		}
	}
	id := m.id()
	now := time.Now()
	m.users[id] = model.User{
		ID: id, Email: email, HashedPassword: hashedPassword, Name: name,
		CreatedAt: now, UpdatedAt: now,
	}
	return id, nil
}

func (m *MemStore) GetUserByEmail(email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *MemStore) GetUserByID(id int) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	out := u
	return &out, nil
}

// ---- content ----

func (m *MemStore) CreateContent(title, contentType, url string, mimeType *string, duration int, pageCount *int, createdBy int) (model.Content, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.id()
	now := time.Now()
	c := model.Content{
		ID: id, Title: title, Type: contentType, URL: url, MimeType: mimeType,
		Duration: duration, PageCount: pageCount, CreatedBy: createdBy,
		CreatedAt: now, UpdatedAt: now,
	}
	m.content[id] = c
	return c, nil
}

func (m *MemStore) GetContentByID(id int) (model.Content, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.content[id]
	if !ok {
		return model.Content{}, sql.ErrNoRows
	}
	c.Items = m.itemsOfContent(id)
	return c, nil
}

func (m *MemStore) ListContent() ([]model.Content, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Content, 0, len(m.content))
	for _, c := range m.content {
		c.Items = m.itemsOfContent(c.ID)
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemStore) DeleteContent(id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.content[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.content, id)
	for ciID, ci := range m.contentItems {
		if ci.ContentID != id {
			continue
		}
		delete(m.contentItems, ciID)
		for piID, pi := range m.playlistItems {
			if pi.ContentItemID == ciID {
				m.removePlaylistItemLocked(piID, pi)
			}
		}
	}
	return nil
}

func (m *MemStore) CreateContentItem(contentID, itemNumber int, url string, mimeType *string, duration int) (model.ContentItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.content[contentID]; !ok {
		return model.ContentItem{}, sql.ErrNoRows
	}
	id := m.id()
	ci := model.ContentItem{
		ID: id, ContentID: contentID, ItemNumber: itemNumber, URL: url,
		MimeType: mimeType, Duration: duration, CreatedAt: time.Now(),
	}
	m.contentItems[id] = ci
	return ci, nil
}

func (m *MemStore) GetContentItemByID(id int) (model.ContentItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ci, ok := m.contentItems[id]
	if !ok {
		return model.ContentItem{}, sql.ErrNoRows
	}
	return ci, nil
}

func (m *MemStore) ListContentItems(contentID int) ([]model.ContentItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.itemsOfContent(contentID), nil
}

func (m *MemStore) itemsOfContent(contentID int) []model.ContentItem {
	var out []model.ContentItem
	for _, ci := range m.contentItems {
		if ci.ContentID == contentID {
			out = append(out, ci)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemNumber < out[j].ItemNumber })
	return out
}

// ---- playlists ----

func (m *MemStore) CreatePlaylist(name string, description *string, loop, shuffle bool, createdBy int) (model.Playlist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.id()
	now := time.Now()
	p := model.Playlist{
		ID: id, Name: name, Description: description, Loop: loop, Shuffle: shuffle,
		CreatedBy: createdBy, CreatedAt: now, UpdatedAt: now,
	}
	m.playlists[id] = p
	return p, nil
}

func (m *MemStore) GetPlaylistByID(id int) (model.Playlist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.playlists[id]
	if !ok {
		return model.Playlist{}, sql.ErrNoRows
	}
	p.Items = m.itemsOfPlaylist(id)
	return p, nil
}

func (m *MemStore) ListPlaylists() ([]model.Playlist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Playlist, 0, len(m.playlists))
	for _, p := range m.playlists {
		p.Items = m.itemsOfPlaylist(p.ID)
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemStore) UpdatePlaylist(id int, name, description *string, loop, shuffle *bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.playlists[id]
	if !ok {
		return sql.ErrNoRows
	}
	if name != nil {
		p.Name = *name
	}
	if description != nil {
		p.Description = description
	}
	if loop != nil {
		p.Loop = *loop
	}
	if shuffle != nil {
		p.Shuffle = *shuffle
	}
	p.UpdatedAt = time.Now()
	m.playlists[id] = p
	return nil
}

func (m *MemStore) DeletePlaylist(id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.playlists[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.playlists, id)
	for piID, pi := range m.playlistItems {
		if pi.PlaylistID == id {
			delete(m.playlistItems, piID)
		}
	}
	for sID, s := range m.schedules {
		if s.PlaylistID == id {
			delete(m.schedules, sID)
		}
	}
	return nil
}

func (m *MemStore) ListPlaylistItems(playlistID int) ([]model.PlaylistItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.playlists[playlistID]; !ok {
		return nil, sql.ErrNoRows
	}
	return m.itemsOfPlaylist(playlistID), nil
}

func (m *MemStore) itemsOfPlaylist(playlistID int) []model.PlaylistItem {
	var out []model.PlaylistItem
	for _, pi := range m.playlistItems {
		if pi.PlaylistID != playlistID {
			continue
		}
		if ci, ok := m.contentItems[pi.ContentItemID]; ok {
			copied := ci
			pi.ContentItem = &copied
		}
		out = append(out, pi)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}

func (m *MemStore) InsertPlaylistItem(playlistID, contentItemID int, durationOverride *int) (model.PlaylistItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.playlists[playlistID]; !ok {
		return model.PlaylistItem{}, sql.ErrNoRows
	}
	if _, ok := m.contentItems[contentItemID]; !ok {
		return model.PlaylistItem{}, sql.ErrNoRows
	}
	pos := 0
	for _, pi := range m.playlistItems {
		if pi.PlaylistID != playlistID {
			continue
		}
		if pi.ContentItemID == contentItemID {
			return model.PlaylistItem{}, fmt.Errorf("content item %d already in playlist %d", contentItemID, playlistID)
		}
		if pi.Position >= pos {
			pos = pi.Position + 1
		}
	}
	id := m.id()
	pi := model.PlaylistItem{
		ID: id, PlaylistID: playlistID, ContentItemID: contentItemID,
		Position: pos, DurationOverride: durationOverride, CreatedAt: time.Now(),
	}
	m.playlistItems[id] = pi
	return pi, nil
}

func (m *MemStore) DeletePlaylistItem(playlistID, itemID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	pi, ok := m.playlistItems[itemID]
	if !ok || pi.PlaylistID != playlistID {
		return sql.ErrNoRows
	}
	m.removePlaylistItemLocked(itemID, pi)
	return nil
}

// removePlaylistItemLocked deletes the item and closes the position gap.
func (m *MemStore) removePlaylistItemLocked(itemID int, pi model.PlaylistItem) {
	delete(m.playlistItems, itemID)
	for id, other := range m.playlistItems {
		if other.PlaylistID == pi.PlaylistID && other.Position > pi.Position {
			other.Position--
			m.playlistItems[id] = other
		}
	}
}

func (m *MemStore) ApplyReorder(playlistID int, positions map[int]int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for itemID, pos := range positions {
		pi, ok := m.playlistItems[itemID]
		if !ok || pi.PlaylistID != playlistID {
			return sql.ErrNoRows
		}
		pi.Position = pos
		m.playlistItems[itemID] = pi
	}
	return nil
}

// ---- schedules ----

func (m *MemStore) CreateSchedule(s model.PlaylistSchedule) (model.PlaylistSchedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.playlists[s.PlaylistID]; !ok {
		return model.PlaylistSchedule{}, sql.ErrNoRows
	}
	s.ID = m.id()
	now := time.Now()
	s.CreatedAt = now
	s.UpdatedAt = now
	m.schedules[s.ID] = s
	return s, nil
}

func (m *MemStore) GetScheduleByID(playlistID, scheduleID int) (model.PlaylistSchedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.schedules[scheduleID]
	if !ok || s.PlaylistID != playlistID {
		return model.PlaylistSchedule{}, sql.ErrNoRows
	}
	return s, nil
}

func (m *MemStore) ListSchedules(playlistID int) ([]model.PlaylistSchedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.PlaylistSchedule
	for _, s := range m.schedules {
		if s.PlaylistID == playlistID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemStore) ListActiveSchedules(playlistID int) ([]model.PlaylistSchedule, error) {
	all, err := m.ListSchedules(playlistID)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, s := range all {
		if s.IsActive {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *MemStore) UpdateSchedule(s model.PlaylistSchedule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.schedules[s.ID]
	if !ok || existing.PlaylistID != s.PlaylistID {
		return sql.ErrNoRows
	}
	s.CreatedAt = existing.CreatedAt
	s.UpdatedAt = time.Now()
	m.schedules[s.ID] = s
	return nil
}

func (m *MemStore) DeleteSchedule(playlistID, scheduleID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.schedules[scheduleID]
	if !ok || s.PlaylistID != playlistID {
		return sql.ErrNoRows
	}
	delete(m.schedules, scheduleID)
	return nil
}

// ---- screens ----

func (m *MemStore) CreateScreen(name string, location *string, createdBy int) (model.Screen, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.screens {
		if s.Name == name {
			return model.Screen{}, fmt.Errorf("screen name %q already taken", name)
		}
	}
	id := m.id()
	now := time.Now()
	s := model.Screen{
		ID: id, Name: name, Location: location, IsActive: true,
		CreatedBy: createdBy, CreatedAt: now, UpdatedAt: now,
	}
	m.screens[id] = s
	return s, nil
}

func (m *MemStore) GetScreenByID(id int) (model.Screen, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.screens[id]
	if !ok {
		return model.Screen{}, sql.ErrNoRows
	}
	return s, nil
}

func (m *MemStore) GetScreenByName(name string) (*model.Screen, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.screens {
		if s.Name == name {
			out := s
			return &out, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *MemStore) GetScreenByDeviceToken(token string) (*model.Screen, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.screens {
		if s.DeviceToken != nil && *s.DeviceToken == token {
			out := s
			return &out, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *MemStore) ListScreens() ([]model.Screen, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Screen, 0, len(m.screens))
	for _, s := range m.screens {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemStore) UpdateScreen(id int, name, location *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.screens[id]
	if !ok {
		return sql.ErrNoRows
	}
	if name != nil {
		s.Name = *name
	}
	if location != nil {
		s.Location = location
	}
	s.UpdatedAt = time.Now()
	m.screens[id] = s
	return nil
}

func (m *MemStore) DeleteScreen(id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.screens[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.screens, id)
	return nil
}

func (m *MemStore) AssignPlaylistToScreen(screenID int, playlistID *int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.screens[screenID]
	if !ok {
		return sql.ErrNoRows
	}
	s.AssignedPlaylistID = playlistID
	s.UpdatedAt = time.Now()
	m.screens[screenID] = s
	return nil
}

func (m *MemStore) SetScreenDeviceToken(screenID int, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.screens[screenID]
	if !ok {
		return sql.ErrNoRows
	}
	s.DeviceToken = &token
	s.UpdatedAt = time.Now()
	m.screens[screenID] = s
	return nil
}

func (m *MemStore) TouchScreen(screenID int, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.screens[screenID]
	if !ok {
		return sql.ErrNoRows
	}
	s.LastSeen = &at
	m.screens[screenID] = s
	return nil
}

func (m *MemStore) ListScreensUsingPlaylist(playlistID int) ([]model.Screen, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Screen
	for _, s := range m.screens {
		if s.AssignedPlaylistID != nil && *s.AssignedPlaylistID == playlistID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemStore) ClearPlaylistAssignments(playlistID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.screens {
		if s.AssignedPlaylistID != nil && *s.AssignedPlaylistID == playlistID {
			s.AssignedPlaylistID = nil
			s.UpdatedAt = time.Now()
			m.screens[id] = s
		}
	}
	return nil
}
