package server

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/plaza-social/plaza/model"
	"github.com/plaza-social/plaza/server/handlers"
)

func TestDirectConversationDedup(t *testing.T) {
	db, router := PrepareTestForRestAPIs(t)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	w := doRequest(router, "POST", "/conversations", alice.Id, map[string]interface{}{
		"kind":       model.ConversationKindDirect,
		"member_ids": []string{bob.Id},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var first model.Conversation
	decodeBody(t, w, &first)
	require.Len(t, first.Members, 2)

	// Asking again, from either side, returns the same thread.
	w = doRequest(router, "POST", "/conversations", bob.Id, map[string]interface{}{
		"kind":       model.ConversationKindDirect,
		"member_ids": []string{alice.Id},
	})
	require.Equal(t, http.StatusOK, w.Code)
	var second model.Conversation
	decodeBody(t, w, &second)
	require.Equal(t, first.Id, second.Id)

	var count int64
	db.Model(&model.Conversation{}).Count(&count)
	require.Equal(t, int64(1), count)
}

func TestSendAndListMessages(t *testing.T) {
	db, router := PrepareTestForRestAPIs(t)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	mallory := createTestUser(t, db, "mallory")

	w := doRequest(router, "POST", "/conversations", alice.Id, map[string]interface{}{
		"kind":       model.ConversationKindDirect,
		"member_ids": []string{bob.Id},
	})
	var conversation model.Conversation
	decodeBody(t, w, &conversation)

	w = doRequest(router, "POST", "/conversations/"+conversation.Id+"/messages", alice.Id,
		map[string]string{"content": "hey bob"})
	require.Equal(t, http.StatusCreated, w.Code)

	// Outsiders cannot read or write the thread.
	w = doRequest(router, "POST", "/conversations/"+conversation.Id+"/messages", mallory.Id,
		map[string]string{"content": "let me in"})
	require.Equal(t, http.StatusForbidden, w.Code)
	w = doRequest(router, "GET", "/conversations/"+conversation.Id+"/messages", mallory.Id, nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	var messages []model.Message
	w = doRequest(router, "GET", "/conversations/"+conversation.Id+"/messages", bob.Id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w, &messages)
	require.Len(t, messages, 1)
	require.Equal(t, "hey bob", messages[0].Content)
}

func TestUnreadCountAndReceipts(t *testing.T) {
	db, router := PrepareTestForRestAPIs(t)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	w := doRequest(router, "POST", "/conversations", alice.Id, map[string]interface{}{
		"kind":       model.ConversationKindDirect,
		"member_ids": []string{bob.Id},
	})
	var conversation model.Conversation
	decodeBody(t, w, &conversation)

	var last model.Message
	for _, content := range []string{"one", "two", "three"} {
		w = doRequest(router, "POST", "/conversations/"+conversation.Id+"/messages", alice.Id,
			map[string]string{"content": content})
		decodeBody(t, w, &last)
	}

	// Bob has three unread, alice none since senders read their own.
	var inbox []handlers.ConversationOutput
	w = doRequest(router, "GET", "/conversations", bob.Id, nil)
	decodeBody(t, w, &inbox)
	require.Len(t, inbox, 1)
	require.Equal(t, int64(3), inbox[0].UnreadCount)

	w = doRequest(router, "GET", "/conversations", alice.Id, nil)
	decodeBody(t, w, &inbox)
	require.Equal(t, int64(0), inbox[0].UnreadCount)

	// Bob reads up to the last message.
	w = doRequest(router, "POST", "/conversations/"+conversation.Id+"/read", bob.Id,
		map[string]int64{"cursor": last.Cursor})
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, "GET", "/conversations", bob.Id, nil)
	decodeBody(t, w, &inbox)
	require.Equal(t, int64(0), inbox[0].UnreadCount)

	// A stale receipt cannot move the cursor backwards.
	w = doRequest(router, "POST", "/conversations/"+conversation.Id+"/read", bob.Id,
		map[string]int64{"cursor": 1})
	require.Equal(t, http.StatusOK, w.Code)

	var membership model.ConversationMember
	db.Where("conversation_id = ? AND user_id = ?", conversation.Id, bob.Id).First(&membership)
	require.Equal(t, last.Cursor, membership.LastReadCursor)
}

func TestGroupConversationMembers(t *testing.T) {
	db, router := PrepareTestForRestAPIs(t)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	carol := createTestUser(t, db, "carol")

	w := doRequest(router, "POST", "/conversations", alice.Id, map[string]interface{}{
		"kind":       model.ConversationKindGroup,
		"title":      "plaza crew",
		"member_ids": []string{bob.Id},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var group model.Conversation
	decodeBody(t, w, &group)
	require.Len(t, group.Members, 2)

	w = doRequest(router, "POST", "/conversations/"+group.Id+"/members", bob.Id,
		map[string]string{"user_id": carol.Id})
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, "GET", "/conversations/"+group.Id, carol.Id, nil)
	require.Equal(t, http.StatusOK, w.Code)
}
