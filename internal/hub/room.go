package hub

import (
	"context"
	"encoding/json"

	"gatherly/internal/live"
	"gatherly/internal/repo"
	"gatherly/internal/service"
	"gatherly/internal/state"

	"go.uber.org/zap"
)

// Rooms bridge state holders and the hub: one holder per topic, its cells
// broadcast to everyone in the room, inbound intents dispatched against the
// services (which carry the authorization checks).

// NewRoomFactory wires the repositories and services every room kind needs.
func NewRoomFactory(events repo.EventRepository, users repo.UserRepository, eventSvc service.EventService, userSvc service.UserService, logger *zap.Logger) RoomFactory {
	return func(ctx context.Context, topic string, publish func(live.Frame)) (roomHolder, error) {
		kind, id, err := live.ParseTopic(topic)
		if err != nil {
			return nil, err
		}

		ctx, cancel := context.WithCancel(ctx)
		switch kind {
		case live.KindEvent:
			return &eventRoom{
				topic:   topic,
				eventID: id,
				holder:  state.NewEventState(ctx, events, users, logger),
				svc:     eventSvc,
				userSvc: userSvc,
				publish: publish,
				logger:  logger,
				ctx:     ctx,
				cancel:  cancel,
			}, nil
		case live.KindUser:
			return &userRoom{
				topic:   topic,
				uid:     id,
				holder:  state.NewUserState(ctx, users, logger),
				svc:     userSvc,
				publish: publish,
				logger:  logger,
				ctx:     ctx,
				cancel:  cancel,
			}, nil
		default:
			return &feedRoom{
				topic:   topic,
				holder:  state.NewEventState(ctx, events, users, logger),
				publish: publish,
				logger:  logger,
				ctx:     ctx,
				cancel:  cancel,
			}, nil
		}
	}
}

// pumpCell forwards every value of a state cell to the room as a frame.
func pumpCell[T any](ctx context.Context, cell *state.Cell[T], frameType, topic string, publish func(live.Frame), logger *zap.Logger) {
	ch, unsubscribe := cell.Subscribe()
	go func() {
		defer unsubscribe()
		for {
			select {
			case <-ctx.Done():
				return
			case v, ok := <-ch:
				if !ok {
					return
				}
				frame, err := live.NewFrame(frameType, topic, v)
				if err != nil {
					logger.Error("failed to encode state frame", zap.Error(err), zap.String("type", frameType))
					continue
				}
				publish(frame)
			}
		}
	}()
}

func sendError(c *Client, topic string, err error) {
	frame, encodeErr := live.NewFrame(live.FrameError, topic, map[string]string{"message": err.Error()})
	if encodeErr != nil {
		return
	}
	c.Send(frame)
}

// --- event room ---

type eventRoom struct {
	topic   string
	eventID string
	holder  *state.EventState
	svc     service.EventService
	userSvc service.UserService
	publish func(live.Frame)
	logger  *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
}

func (r *eventRoom) Start() {
	r.holder.LoadEvent(r.eventID)
	r.holder.StartComments(r.eventID)
	r.holder.StartParticipants(r.eventID)
	r.holder.StartCheckIns(r.eventID, "")

	pumpCell(r.ctx, r.holder.Event, live.FrameEvent, r.topic, r.publish, r.logger)
	pumpCell(r.ctx, r.holder.Comments, live.FrameComments, r.topic, r.publish, r.logger)
	pumpCell(r.ctx, r.holder.Participants, live.FrameParticipants, r.topic, r.publish, r.logger)
	pumpCell(r.ctx, r.holder.Arrived, live.FrameArrived, r.topic, r.publish, r.logger)
	pumpCell(r.ctx, r.holder.Operation, live.FrameOperation, r.topic, r.publish, r.logger)
}

func (r *eventRoom) Handle(c *Client, frame live.Frame) {
	switch frame.Type {
	case live.IntentPostComment:
		var intent live.CommentIntent
		if err := json.Unmarshal(frame.Payload, &intent); err != nil {
			sendError(c, r.topic, err)
			return
		}
		actor := service.Actor{ID: c.UserID, DisplayName: c.DisplayName}
		if err := r.svc.PostComment(r.ctx, actor, r.eventID, intent.Text, intent.ParentID); err != nil {
			sendError(c, r.topic, err)
		}
	case live.IntentDeleteComment:
		var intent live.TargetIntent
		if err := json.Unmarshal(frame.Payload, &intent); err != nil {
			sendError(c, r.topic, err)
			return
		}
		if err := r.svc.DeleteComment(r.ctx, c.UserID, r.eventID, intent.CommentID); err != nil {
			sendError(c, r.topic, err)
		}
	case live.IntentCheckIn:
		if err := r.svc.CheckIn(r.ctx, c.UserID, r.eventID); err != nil {
			sendError(c, r.topic, err)
		}
	case live.IntentCancelCheckIn:
		if err := r.svc.CancelCheckIn(r.ctx, c.UserID, r.eventID); err != nil {
			sendError(c, r.topic, err)
		}
	case live.IntentJoin:
		if err := r.svc.Join(r.ctx, c.UserID, r.eventID); err != nil {
			sendError(c, r.topic, err)
		}
	case live.IntentLeave:
		if err := r.svc.Leave(r.ctx, c.UserID, r.eventID); err != nil {
			sendError(c, r.topic, err)
		}
	case live.IntentBanUser:
		var intent live.TargetIntent
		if err := json.Unmarshal(frame.Payload, &intent); err != nil {
			sendError(c, r.topic, err)
			return
		}
		if err := r.svc.Ban(r.ctx, c.UserID, r.eventID, intent.UserID); err != nil {
			sendError(c, r.topic, err)
		}
	case live.IntentUnbanUser:
		var intent live.TargetIntent
		if err := json.Unmarshal(frame.Payload, &intent); err != nil {
			sendError(c, r.topic, err)
			return
		}
		if err := r.svc.Unban(r.ctx, c.UserID, r.eventID, intent.UserID); err != nil {
			sendError(c, r.topic, err)
		}
	default:
		r.logger.Warn("unknown intent", zap.String("type", frame.Type), zap.String("topic", r.topic))
	}
}

func (r *eventRoom) Close() {
	r.cancel()
	r.holder.Close()
}

// --- user room ---

type userRoom struct {
	topic   string
	uid     string
	holder  *state.UserState
	svc     service.UserService
	publish func(live.Frame)
	logger  *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
}

func (r *userRoom) Start() {
	r.holder.LoadUser(r.uid)
	pumpCell(r.ctx, r.holder.User, live.FrameUser, r.topic, r.publish, r.logger)
	pumpCell(r.ctx, r.holder.Operation, live.FrameOperation, r.topic, r.publish, r.logger)
}

func (r *userRoom) Handle(c *Client, frame live.Frame) {
	switch frame.Type {
	case live.IntentFollow:
		if err := r.svc.Follow(r.ctx, c.UserID, r.uid); err != nil {
			sendError(c, r.topic, err)
		}
	case live.IntentUnfollow:
		if err := r.svc.Unfollow(r.ctx, c.UserID, r.uid); err != nil {
			sendError(c, r.topic, err)
		}
	default:
		r.logger.Warn("unknown intent", zap.String("type", frame.Type), zap.String("topic", r.topic))
	}
}

func (r *userRoom) Close() {
	r.cancel()
	r.holder.Close()
}

// --- feed room ---

type feedRoom struct {
	topic   string
	holder  *state.EventState
	publish func(live.Frame)
	logger  *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
}

func (r *feedRoom) Start() {
	r.holder.LoadAllEvents()
	pumpCell(r.ctx, r.holder.Events, live.FrameEvents, r.topic, r.publish, r.logger)
}

func (r *feedRoom) Handle(c *Client, frame live.Frame) {
	r.logger.Warn("feed room accepts no intents", zap.String("type", frame.Type))
}

func (r *feedRoom) Close() {
	r.cancel()
	r.holder.Close()
}
