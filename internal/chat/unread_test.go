package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trackline-dev/trackline/internal/models"
	"github.com/trackline-dev/trackline/internal/testutil"
	"gorm.io/gorm"
)

func seedRoom(t *testing.T, db *gorm.DB, members ...models.User) models.ChatRoom {
	t.Helper()

	room := models.ChatRoom{
		Name:     "Apollo - Discussion",
		RoomType: models.RoomTypeProject,
		Members:  members,
	}
	require.NoError(t, db.Create(&room).Error)

	return room
}

func sendMessage(t *testing.T, db *gorm.DB, roomID uint, senderID *uint, content string) models.Message {
	t.Helper()

	message := models.Message{RoomID: roomID, SenderID: senderID, Content: content}
	require.NoError(t, db.Create(&message).Error)

	return message
}

func TestUnreadCountExcludesOwnMessages(t *testing.T) {
	db := testutil.NewTestDB()
	alice := testutil.CreateUser(db, "alice")
	bob := testutil.CreateUser(db, "bob")
	room := seedRoom(t, db, alice, bob)

	sendMessage(t, db, room.ID, &alice.ID, "hello")
	sendMessage(t, db, room.ID, &alice.ID, "anyone?")
	sendMessage(t, db, room.ID, &bob.ID, "here")

	// Alice only has bob's message unread; her own never count.
	count, err := UnreadCount(db, room.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	count, err = UnreadCount(db, room.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestUnreadCountDeletedSender(t *testing.T) {
	db := testutil.NewTestDB()
	alice := testutil.CreateUser(db, "alice")
	room := seedRoom(t, db, alice)

	// A message whose sender account was deleted stays unread for everyone.
	sendMessage(t, db, room.ID, nil, "ghost")

	count, err := UnreadCount(db, room.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestMarkMessageRead(t *testing.T) {
	db := testutil.NewTestDB()
	alice := testutil.CreateUser(db, "alice")
	room := seedRoom(t, db, alice)
	message := sendMessage(t, db, room.ID, &alice.ID, "hello")

	require.NoError(t, MarkMessageRead(db, room.ID, message.ID))

	var got models.Message
	require.NoError(t, db.First(&got, message.ID).Error)
	assert.True(t, got.IsRead)
}

func TestMarkMessageReadScopedToRoom(t *testing.T) {
	db := testutil.NewTestDB()
	alice := testutil.CreateUser(db, "alice")
	room := seedRoom(t, db, alice)
	other := seedRoom(t, db)
	message := sendMessage(t, db, room.ID, &alice.ID, "hello")

	// The message lives in another room.
	err := MarkMessageRead(db, other.ID, message.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	err = MarkMessageRead(db, room.ID, 9999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestLastMessage(t *testing.T) {
	db := testutil.NewTestDB()
	alice := testutil.CreateUser(db, "alice")
	room := seedRoom(t, db, alice)

	got, err := LastMessage(db, room.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	sendMessage(t, db, room.ID, &alice.ID, "first")
	last := sendMessage(t, db, room.ID, &alice.ID, "second")

	got, err = LastMessage(db, room.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, last.ID, got.ID)
	assert.Equal(t, "second", got.Content)
	require.NotNil(t, got.Sender)
	assert.Equal(t, "alice", got.Sender.Name)
}

func TestIsMember(t *testing.T) {
	db := testutil.NewTestDB()
	alice := testutil.CreateUser(db, "alice")
	bob := testutil.CreateUser(db, "bob")
	room := seedRoom(t, db, alice)

	member, err := IsMember(db, room.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, member)

	member, err = IsMember(db, room.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, member)
}
