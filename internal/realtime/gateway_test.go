package realtime

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/hdngo/ideahive/backend/internal/engagement"
	"github.com/hdngo/ideahive/backend/internal/feed"
	"github.com/hdngo/ideahive/backend/internal/models"
)

// recordingBroadcaster captures fan-out events for assertions
type recordingBroadcaster struct {
	mu       sync.Mutex
	messages []Message
}

func (b *recordingBroadcaster) Broadcast(event string, data interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = append(b.messages, Message{Type: event, Data: data})
}

func (b *recordingBroadcaster) all() []Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Message, len(b.messages))
	copy(out, b.messages)
	return out
}

func (b *recordingBroadcaster) last(event string) (Message, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := len(b.messages) - 1; i >= 0; i-- {
		if b.messages[i].Type == event {
			return b.messages[i], true
		}
	}
	return Message{}, false
}

func (b *recordingBroadcaster) count(event string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, m := range b.messages {
		if m.Type == event {
			n++
		}
	}
	return n
}

// fakeReactions is an in-memory reaction store
type fakeReactions struct {
	mu   sync.Mutex
	rows map[string]models.Reaction
}

func newFakeReactions() *fakeReactions {
	return &fakeReactions{rows: make(map[string]models.Reaction)}
}

func reactionKey(userID, ideaID primitive.ObjectID, kind models.ReactionKind) string {
	return userID.Hex() + "|" + ideaID.Hex() + "|" + string(kind)
}

func (s *fakeReactions) CreateReaction(_ context.Context, r *models.Reaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = primitive.NewObjectID()
	s.rows[reactionKey(r.UserID, r.IdeaID, r.State)] = *r
	return nil
}

func (s *fakeReactions) DeleteReaction(_ context.Context, userID, ideaID primitive.ObjectID, kind models.ReactionKind) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, reactionKey(userID, ideaID, kind))
	return nil
}

func (s *fakeReactions) HasReaction(_ context.Context, userID, ideaID primitive.ObjectID, kind models.ReactionKind) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.rows[reactionKey(userID, ideaID, kind)]
	return ok, nil
}

func (s *fakeReactions) CountsByUser(_ context.Context, ideaID primitive.ObjectID, kind models.ReactionKind) ([]models.UserCount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := []models.UserCount{}
	for _, r := range s.rows {
		if r.IdeaID == ideaID && r.State == kind {
			counts = append(counts, models.UserCount{UserID: r.UserID, Count: 1})
		}
	}
	return counts, nil
}

func (s *fakeReactions) DeleteByIdeaID(_ context.Context, ideaID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, r := range s.rows {
		if r.IdeaID == ideaID {
			delete(s.rows, key)
		}
	}
	return nil
}

// fakeComments is an in-memory comment ledger
type fakeComments struct {
	mu   sync.Mutex
	rows map[primitive.ObjectID]models.Comment
}

func newFakeComments() *fakeComments {
	return &fakeComments{rows: make(map[primitive.ObjectID]models.Comment)}
}

func (s *fakeComments) CreateComment(_ context.Context, c *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = primitive.NewObjectID()
	c.LastEdition = time.Now()
	s.rows[c.ID] = *c
	return nil
}

func (s *fakeComments) GetCommentByID(_ context.Context, id primitive.ObjectID) (*models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.rows[id]
	if !ok {
		return nil, errors.New("comment not found")
	}
	return &c, nil
}

func (s *fakeComments) GetCommentsByIdeaID(_ context.Context, ideaID primitive.ObjectID) ([]models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	comments := []models.Comment{}
	for _, c := range s.rows {
		if c.IdeaID == ideaID {
			comments = append(comments, c)
		}
	}
	return comments, nil
}

func (s *fakeComments) UpdateComment(_ context.Context, id primitive.ObjectID, content string, anonymous bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.rows[id]
	if !ok {
		return errors.New("comment not found")
	}
	c.Content = content
	c.Anonymous = anonymous
	s.rows[id] = c
	return nil
}

func (s *fakeComments) DeleteComment(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[id]; !ok {
		return errors.New("comment not found")
	}
	delete(s.rows, id)
	return nil
}

func (s *fakeComments) DeleteByIdeaID(_ context.Context, ideaID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, c := range s.rows {
		if c.IdeaID == ideaID {
			delete(s.rows, id)
		}
	}
	return nil
}

func (s *fakeComments) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

// fakeIdeas is an in-memory idea collection with user join for summaries
type fakeIdeas struct {
	mu    sync.Mutex
	ideas []models.Idea
	users map[primitive.ObjectID]models.User
}

func newFakeIdeas() *fakeIdeas {
	return &fakeIdeas{users: make(map[primitive.ObjectID]models.User)}
}

func (s *fakeIdeas) CreateIdea(_ context.Context, idea *models.Idea) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idea.ID.IsZero() {
		idea.ID = primitive.NewObjectID()
	}
	s.ideas = append(s.ideas, *idea)
	return nil
}

func (s *fakeIdeas) GetIdeaByID(_ context.Context, id primitive.ObjectID) (*models.Idea, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.ideas {
		if s.ideas[i].ID == id {
			idea := s.ideas[i]
			return &idea, nil
		}
	}
	return nil, errors.New("idea not found")
}

func (s *fakeIdeas) GetAllIdeas(_ context.Context) ([]models.Idea, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Idea, len(s.ideas))
	copy(out, s.ideas)
	return out, nil
}

func (s *fakeIdeas) GetIdeaSummaries(_ context.Context) ([]models.IdeaSummary, error) {
	s.mu.Lock()
	sorted := make([]models.Idea, len(s.ideas))
	copy(sorted, s.ideas)
	s.mu.Unlock()

	feed.SortByRecency(sorted)
	summaries := []models.IdeaSummary{}
	for _, idea := range sorted {
		summary := models.IdeaSummary{
			ID:          idea.ID,
			Title:       idea.Title,
			LastEdition: idea.LastEdition,
			URL:         idea.URL,
		}
		if user, ok := s.users[idea.UserID]; ok {
			summary.User = user.ToAuthor()
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func (s *fakeIdeas) UpdateIdea(_ context.Context, id primitive.ObjectID, req *models.UpdateIdeaRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.ideas {
		if s.ideas[i].ID == id {
			s.ideas[i].Title = req.Title
			s.ideas[i].Description = req.Description
			s.ideas[i].Anonymous = req.Anonymous
			s.ideas[i].LastEdition = time.Now()
			return nil
		}
	}
	return errors.New("idea not found")
}

func (s *fakeIdeas) DeleteIdea(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.ideas {
		if s.ideas[i].ID == id {
			s.ideas = append(s.ideas[:i], s.ideas[i+1:]...)
			return nil
		}
	}
	return errors.New("idea not found")
}

// fakeUsers is an in-memory user collection
type fakeUsers struct {
	users map[primitive.ObjectID]models.User
}

func (s *fakeUsers) GetUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, errors.New("user not found")
	}
	return &user, nil
}

// fakeNotifier records deliveries and signals each one
type fakeNotifier struct {
	mu        sync.Mutex
	delivered []string
	signal    chan struct{}
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{signal: make(chan struct{}, 8)}
}

func (n *fakeNotifier) Notify(address, subject, body string) error {
	n.mu.Lock()
	n.delivered = append(n.delivered, address+"|"+subject+"|"+body)
	n.mu.Unlock()
	n.signal <- struct{}{}
	return nil
}

func (n *fakeNotifier) waitOne(t *testing.T) string {
	t.Helper()
	select {
	case <-n.signal:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for notification")
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.delivered[len(n.delivered)-1]
}

type gatewayFixture struct {
	gateway     *Gateway
	broadcaster *recordingBroadcaster
	reactions   *fakeReactions
	comments    *fakeComments
	ideas       *fakeIdeas
	notifier    *fakeNotifier
}

func setupGateway() *gatewayFixture {
	broadcaster := &recordingBroadcaster{}
	reactions := newFakeReactions()
	comments := newFakeComments()
	ideas := newFakeIdeas()
	users := &fakeUsers{users: ideas.users}
	notifier := newFakeNotifier()

	engine := engagement.NewEngine(reactions, zerolog.Nop())
	aggregator := engagement.NewAggregator(reactions)
	resolver := feed.NewResolver(ideas)
	gateway := NewGateway(broadcaster, engine, aggregator, resolver, comments, ideas, users, notifier, zerolog.Nop())

	return &gatewayFixture{
		gateway:     gateway,
		broadcaster: broadcaster,
		reactions:   reactions,
		comments:    comments,
		ideas:       ideas,
		notifier:    notifier,
	}
}

func (f *gatewayFixture) addUser(name, email, department string) primitive.ObjectID {
	id := primitive.NewObjectID()
	f.ideas.users[id] = models.User{ID: id, Name: name, Email: email, Department: department}
	return id
}

func (f *gatewayFixture) addIdea(title string, authorID primitive.ObjectID, editedAt time.Time) primitive.ObjectID {
	idea := models.Idea{Title: title, UserID: authorID, LastEdition: editedAt}
	_ = f.ideas.CreateIdea(context.Background(), &idea)
	return idea.ID
}

func lastCounts(t *testing.T, b *recordingBroadcaster, event string) ReactionCounts {
	t.Helper()
	msg, ok := b.last(event)
	if !ok {
		t.Fatalf("no %q broadcast recorded", event)
	}
	counts, ok := msg.Data.(ReactionCounts)
	if !ok {
		t.Fatalf("unexpected payload type %T for %q", msg.Data, event)
	}
	return counts
}

func lastPosition(t *testing.T, b *recordingBroadcaster, event string) CommentPosition {
	t.Helper()
	msg, ok := b.last(event)
	if !ok {
		t.Fatalf("no %q broadcast recorded", event)
	}
	pos, ok := msg.Data.(CommentPosition)
	if !ok {
		t.Fatalf("unexpected payload type %T for %q", msg.Data, event)
	}
	return pos
}

func TestViewThenLikeThenUnlikeScenario(t *testing.T) {
	f := setupGateway()
	ctx := context.Background()
	author := f.addUser("Ann", "ann@example.com", "IT")
	ideaID := f.addIdea("I1", author, time.Now())
	userID := f.addUser("Uma", "uma@example.com", "HR")

	f.gateway.OnView(ctx, userID.Hex(), ideaID.Hex())
	views := lastCounts(t, f.broadcaster, EventView)
	if len(views.Users) != 1 || views.Users[0].UserID != userID || views.Users[0].Count != 1 {
		t.Fatalf("unexpected view counts: %+v", views.Users)
	}

	f.gateway.OnLike(ctx, userID.Hex(), ideaID.Hex())
	likes := lastCounts(t, f.broadcaster, EventLike)
	if len(likes.Users) != 1 {
		t.Fatalf("expected likeCount 1, got %d", len(likes.Users))
	}
	// the view from the earlier event must not be duplicated
	views = lastCounts(t, f.broadcaster, EventView)
	if len(views.Users) != 1 {
		t.Fatalf("expected a single view, got %d", len(views.Users))
	}

	f.gateway.OnLike(ctx, userID.Hex(), ideaID.Hex())
	likes = lastCounts(t, f.broadcaster, EventLike)
	if len(likes.Users) != 0 {
		t.Fatalf("expected likeCount 0 after toggle, got %d", len(likes.Users))
	}
}

func TestAggregatesBroadcastEvenOnToggleOff(t *testing.T) {
	f := setupGateway()
	ctx := context.Background()
	ideaID := primitive.NewObjectID()
	userID := primitive.NewObjectID()

	f.gateway.OnDislike(ctx, userID.Hex(), ideaID.Hex())
	f.gateway.OnDislike(ctx, userID.Hex(), ideaID.Hex())

	if got := f.broadcaster.count(EventDislike); got != 2 {
		t.Fatalf("expected 2 dislike broadcasts, got %d", got)
	}
}

func TestMalformedIDProducesErrorBroadcast(t *testing.T) {
	f := setupGateway()

	f.gateway.OnLike(context.Background(), "nonsense", primitive.NewObjectID().Hex())

	if _, ok := f.broadcaster.last(EventError); !ok {
		t.Fatal("expected error broadcast for malformed user id")
	}
	if f.broadcaster.count(EventLike) != 0 {
		t.Fatal("no aggregates should be broadcast for rejected event")
	}
}

func TestAddCommentEmptyContentRejected(t *testing.T) {
	f := setupGateway()

	f.gateway.OnAddComment(context.Background(), AddCommentPayload{
		Content: "",
		UserID:  primitive.NewObjectID().Hex(),
		IdeaID:  primitive.NewObjectID().Hex(),
	})

	msg, ok := f.broadcaster.last(EventError)
	if !ok {
		t.Fatal("expected error broadcast")
	}
	if msg.Data != "Content is required!" {
		t.Fatalf("unexpected error payload: %v", msg.Data)
	}
	if f.comments.size() != 0 {
		t.Fatal("ledger must not be mutated")
	}
	if f.broadcaster.count(EventCommentAdded) != 0 {
		t.Fatal("no addCmt broadcast expected")
	}
}

func TestAddCommentMissingUserReferenceRejected(t *testing.T) {
	f := setupGateway()

	f.gateway.OnAddComment(context.Background(), AddCommentPayload{
		Content: "valid content",
		IdeaID:  primitive.NewObjectID().Hex(),
	})

	msg, ok := f.broadcaster.last(EventError)
	if !ok {
		t.Fatal("expected error broadcast")
	}
	if msg.Data != "Invalid user reference" {
		t.Fatalf("error should name the missing user field, got %v", msg.Data)
	}
	if f.comments.size() != 0 {
		t.Fatal("ledger must not be mutated")
	}
}

func TestAddCommentBroadcastsPositionAndNotifiesAuthor(t *testing.T) {
	f := setupGateway()
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	author := f.addUser("Ann", "ann@example.com", "IT")
	f.addIdea("newer", author, base.Add(2*time.Hour))
	target := f.addIdea("target", author, base.Add(time.Hour))
	commenter := f.addUser("Bob", "bob@example.com", "HR")

	f.gateway.OnAddComment(ctx, AddCommentPayload{
		Content: "great idea", UserID: commenter.Hex(), IdeaID: target.Hex(),
	})

	pos := lastPosition(t, f.broadcaster, EventCommentAdded)
	if pos.IdeaID != target.Hex() || pos.Position != 1 {
		t.Fatalf("unexpected position broadcast: %+v", pos)
	}
	if f.comments.size() != 1 {
		t.Fatalf("expected 1 comment in ledger, got %d", f.comments.size())
	}

	delivered := f.notifier.waitOne(t)
	if !strings.HasPrefix(delivered, "ann@example.com|") {
		t.Fatalf("notification should reach the idea author, got %q", delivered)
	}
	if !strings.Contains(delivered, "Bob uploaded 1 new comment") {
		t.Fatalf("notification should name the commenter, got %q", delivered)
	}
}

func TestAddCommentUnknownIdeaBroadcastsMinusOne(t *testing.T) {
	f := setupGateway()

	f.gateway.OnAddComment(context.Background(), AddCommentPayload{
		Content: "orphan", UserID: primitive.NewObjectID().Hex(), IdeaID: primitive.NewObjectID().Hex(),
	})

	pos := lastPosition(t, f.broadcaster, EventCommentAdded)
	if pos.Position != -1 {
		t.Fatalf("expected position -1 for vanished idea, got %d", pos.Position)
	}
}

func TestUpdateCommentUnknownID(t *testing.T) {
	f := setupGateway()

	f.gateway.OnUpdateComment(context.Background(), UpdateCommentPayload{
		CommentID: primitive.NewObjectID().Hex(),
		Content:   "edited",
		IdeaID:    primitive.NewObjectID().Hex(),
	})

	msg, ok := f.broadcaster.last(EventError)
	if !ok {
		t.Fatal("expected error broadcast")
	}
	if msg.Data != "Updating is invalid" {
		t.Fatalf("unexpected error payload: %v", msg.Data)
	}
}

func TestUpdateCommentBroadcastsPosition(t *testing.T) {
	f := setupGateway()
	ctx := context.Background()
	author := f.addUser("Ann", "ann@example.com", "IT")
	ideaID := f.addIdea("idea", author, time.Now())

	comment := &models.Comment{Content: "before", UserID: author, IdeaID: ideaID}
	if err := f.comments.CreateComment(ctx, comment); err != nil {
		t.Fatalf("seed comment failed: %v", err)
	}

	f.gateway.OnUpdateComment(ctx, UpdateCommentPayload{
		CommentID: comment.ID.Hex(), Content: "after", IsAnonymous: true, IdeaID: ideaID.Hex(),
	})

	pos := lastPosition(t, f.broadcaster, EventUpdateComment)
	if pos.IdeaID != ideaID.Hex() || pos.Position != 0 {
		t.Fatalf("unexpected position broadcast: %+v", pos)
	}
	updated, err := f.comments.GetCommentByID(ctx, comment.ID)
	if err != nil {
		t.Fatalf("comment lookup failed: %v", err)
	}
	if updated.Content != "after" || !updated.Anonymous {
		t.Fatalf("comment not updated: %+v", updated)
	}
}

func TestDeleteCommentRemovesAndBroadcasts(t *testing.T) {
	f := setupGateway()
	ctx := context.Background()
	author := f.addUser("Ann", "ann@example.com", "IT")
	ideaID := f.addIdea("idea", author, time.Now())

	comment := &models.Comment{Content: "bye", UserID: author, IdeaID: ideaID}
	if err := f.comments.CreateComment(ctx, comment); err != nil {
		t.Fatalf("seed comment failed: %v", err)
	}

	f.gateway.OnDeleteComment(ctx, DeleteCommentPayload{CommentID: comment.ID.Hex(), IdeaID: ideaID.Hex()})

	if f.comments.size() != 0 {
		t.Fatal("comment should be removed from the ledger")
	}
	pos := lastPosition(t, f.broadcaster, EventDeleteComment)
	if pos.Position != 0 {
		t.Fatalf("unexpected position: %d", pos.Position)
	}
}

func TestDeleteCommentUnknownID(t *testing.T) {
	f := setupGateway()

	f.gateway.OnDeleteComment(context.Background(), DeleteCommentPayload{
		CommentID: primitive.NewObjectID().Hex(), IdeaID: primitive.NewObjectID().Hex(),
	})

	msg, ok := f.broadcaster.last(EventError)
	if !ok {
		t.Fatal("expected error broadcast")
	}
	if msg.Data != "Comment not found" {
		t.Fatalf("unexpected error payload: %v", msg.Data)
	}
}

func TestSubscribeNotificationsBroadcastsFullAndFilteredFeeds(t *testing.T) {
	f := setupGateway()
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	itAuthor := f.addUser("Ann", "ann@example.com", "IT")
	hrAuthor := f.addUser("Bob", "bob@example.com", "HR")
	f.addIdea("first", itAuthor, base.Add(3*time.Hour))
	f.addIdea("second", hrAuthor, base.Add(2*time.Hour))
	f.addIdea("third", itAuthor, base.Add(time.Hour))

	f.gateway.OnSubscribeNotifications(context.Background(), "IT")

	full, ok := f.broadcaster.last(EventNotification)
	if !ok {
		t.Fatal("expected notification broadcast")
	}
	fullList := full.Data.([]models.IdeaSummary)
	if len(fullList) != 3 {
		t.Fatalf("expected 3 ideas in full feed, got %d", len(fullList))
	}
	if fullList[0].Title != "first" || fullList[2].Title != "third" {
		t.Fatalf("feed not recency sorted: %+v", fullList)
	}

	dept, ok := f.broadcaster.last(EventNotificationDept)
	if !ok {
		t.Fatal("expected notificationdepartment broadcast")
	}
	deptList := dept.Data.([]models.IdeaSummary)
	if len(deptList) != 2 {
		t.Fatalf("expected 2 IT ideas, got %d", len(deptList))
	}
	for _, summary := range deptList {
		if summary.User.Department != "IT" {
			t.Fatalf("department filter leaked %q", summary.User.Department)
		}
	}
}

func TestDispatchMalformedPayload(t *testing.T) {
	f := setupGateway()

	f.gateway.Dispatch(context.Background(), Envelope{Type: EventLike, Data: json.RawMessage(`"not an object"`)})
	f.gateway.Dispatch(context.Background(), Envelope{Type: "bogus", Data: json.RawMessage(`{}`)})

	if len(f.broadcaster.all()) != 0 {
		t.Fatalf("malformed events must not broadcast, got %+v", f.broadcaster.all())
	}
}

func TestDispatchRoutesReactionEvents(t *testing.T) {
	f := setupGateway()
	userID, ideaID := primitive.NewObjectID(), primitive.NewObjectID()

	payload, err := json.Marshal(ReactionPayload{UserID: userID.Hex(), IdeaID: ideaID.Hex(), State: "like"})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	f.gateway.Dispatch(context.Background(), Envelope{Type: EventLike, Data: payload})

	likes := lastCounts(t, f.broadcaster, EventLike)
	if len(likes.Users) != 1 {
		t.Fatalf("expected 1 like after dispatch, got %d", len(likes.Users))
	}
}
