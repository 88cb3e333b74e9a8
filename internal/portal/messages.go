package portal

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/workdesk/portal/internal/authz"
	"github.com/workdesk/portal/internal/platform/httpx"
	"github.com/workdesk/portal/internal/shared"
	"github.com/workdesk/portal/internal/store"
)

type messageSubject struct {
	message authz.Document
	ctx     authz.MessageContext
}

// loadMessage fetches the chat and the message together. A message that does
// not belong to the chat in the path is reported as missing.
func (h *Handler) loadMessage(ctx context.Context, actor shared.Actor, chatID, messageID string) (messageSubject, error) {
	var chat, message authz.Document
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		doc, err := h.load(gctx, authz.ResourceChat, chatID)
		if err != nil {
			return err
		}
		chat = doc
		return nil
	})
	g.Go(func() error {
		doc, err := h.load(gctx, authz.ResourceMessage, messageID)
		if err != nil {
			return err
		}
		message = doc
		return nil
	})
	if err := g.Wait(); err != nil {
		return messageSubject{}, err
	}
	if stringField(message, "chatId") != chatID {
		return messageSubject{}, fmt.Errorf("%w: message %s is not in chat %s", httpx.ErrNotFound, messageID, chatID)
	}
	return messageSubject{
		message: message,
		ctx: authz.MessageContext{
			IsMember: slices.Contains(idsOf(chat["members"]), actor.ID),
			IsSender: stringField(message, "senderId") == actor.ID,
		},
	}, nil
}

func (h *Handler) authorizeMessage(r *http.Request, action authz.Action, mctx authz.MessageContext) error {
	return h.rbac.AuthorizeFunc(r, string(authz.ResourceMessage), action, func(role authz.Role) (bool, error) {
		return h.engine.CanPerformMessageAction(role, action, mctx)
	})
}

func (h *Handler) handleGetMessage(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.ActorFromContext(r.Context())
	if !ok {
		h.fail(w, r, httpx.ErrUnauthorized)
		return
	}
	subj, err := h.loadMessage(r.Context(), actor, chi.URLParam(r, "id"), chi.URLParam(r, "messageID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.authorizeMessage(r, authz.ActionRead, subj.ctx); err != nil {
		h.fail(w, r, err)
		return
	}
	h.respondView(w, r, http.StatusOK, authz.ResourceMessage, subj.message, actor, subj.ctx.IsSender, nil)
}

func (h *Handler) handlePatchMessage(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.ActorFromContext(r.Context())
	if !ok {
		h.fail(w, r, httpx.ErrUnauthorized)
		return
	}
	var patch authz.Document
	if err := httpx.DecodeJSON(r, &patch); err != nil || len(patch) == 0 {
		h.fail(w, r, fmt.Errorf("%w: body must be a non-empty JSON object", httpx.ErrValidation))
		return
	}
	chatID, messageID := chi.URLParam(r, "id"), chi.URLParam(r, "messageID")
	subj, err := h.loadMessage(r.Context(), actor, chatID, messageID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.authorizeMessage(r, authz.ActionUpdate, subj.ctx); err != nil {
		h.recordAudit(r.Context(), actor, authz.ActionUpdate, authz.ResourceMessage, messageID, err, nil)
		h.fail(w, r, err)
		return
	}
	edit, err := h.engine.FilterForEdit(authz.ResourceMessage, patch, actor.Role, subj.ctx.IsSender)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if len(edit.Accepted) == 0 {
		h.respondView(w, r, http.StatusOK, authz.ResourceMessage, subj.message, actor, subj.ctx.IsSender, edit.Dropped)
		return
	}
	edit.Accepted["isEdited"] = true
	edit.Accepted["editedAt"] = h.clock().Format(time.RFC3339)
	updated, err := h.store.Update(r.Context(), string(authz.ResourceMessage), messageID, store.FieldEquals("chatId", chatID), edit.Accepted)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.recordAudit(r.Context(), actor, authz.ActionUpdate, authz.ResourceMessage, messageID, nil, map[string]any{"chat_id": chatID})
	h.respondView(w, r, http.StatusOK, authz.ResourceMessage, updated, actor, subj.ctx.IsSender, edit.Dropped)
}
