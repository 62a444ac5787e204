package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/coder/websocket"

	"github.com/scenecraft/scenecraft/internal/asset"
	"github.com/scenecraft/scenecraft/internal/codegen"
	"github.com/scenecraft/scenecraft/internal/engine"
)

const (
	writeWait   = 10 * time.Second
	pingPeriod  = 30 * time.Second
	saveTimeout = 10 * time.Second
	maxMsgSize  = 256 * 1024
	sendBuffer  = 256
)

var errReadOnly = errors.New("playground sessions are not saved")

type view struct {
	zoom, panX, panY float64
}

// Session is one editing connection. It owns an Engine, and every engine
// call happens on the goroutine running loop.
type Session struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	loaded    chan []asset.Result
	engine    *engine.Engine
	inflight  map[string]bool
	view      view
	ID        string
	UserID    string
	DrawingID string
	readOnly  bool

	version      int32
	savedRev     uint64
	optionsDirty bool
}

func newSession(hub *Hub, conn *websocket.Conn, id, userID, drawingID string, snap Snapshot) *Session {
	e := engine.NewEngine(hub.opts.EngineOptions...)
	e.LoadScene(snap.Scene)
	return &Session{
		hub:       hub,
		conn:      conn,
		send:      make(chan []byte, sendBuffer),
		loaded:    make(chan []asset.Result),
		engine:    e,
		inflight:  make(map[string]bool),
		view:      view{zoom: 1},
		ID:        id,
		UserID:    userID,
		DrawingID: drawingID,
		readOnly:  drawingID == "",
		version:   snap.Version,
		savedRev:  e.History().Revision(),
	}
}

func (s *Session) dirty() bool {
	return !s.readOnly && (s.optionsDirty || s.engine.History().Revision() != s.savedRev)
}

// run drives the session until the connection or ctx closes, then saves
// unsaved changes.
func (s *Session) run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	inbox := make(chan []byte, 64)
	go s.readPump(ctx, inbox)
	go s.writePump(ctx)

	s.emit(TypeWelcome, 0, WelcomePayload{
		SessionID: s.ID,
		DrawingID: s.DrawingID,
		Version:   s.version,
		ReadOnly:  s.readOnly,
	})
	s.pushState()
	s.pushDraw()
	s.loadImages(ctx)

loop:
	for {
		select {
		case data, ok := <-inbox:
			if !ok {
				break loop
			}
			s.handle(ctx, data)
		case results := <-s.loaded:
			for _, res := range results {
				delete(s.inflight, res.Src)
				asset.Attach(s.engine, res)
			}
			s.pushDraw()
		case <-ctx.Done():
			break loop
		}
	}

	if s.dirty() {
		saveCtx, cancelSave := context.WithTimeout(context.WithoutCancel(ctx), saveTimeout)
		if _, err := s.save(saveCtx); err != nil {
			slog.Error("save on disconnect", "error", err, "drawing", s.DrawingID, "session", s.ID)
		}
		cancelSave()
	}
	close(s.send)
	s.conn.Close(websocket.StatusNormalClosure, "")
}

func (s *Session) readPump(ctx context.Context, inbox chan<- []byte) {
	defer close(inbox)
	s.conn.SetReadLimit(maxMsgSize)

	for {
		_, data, err := s.conn.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway && ctx.Err() == nil {
				slog.Debug("read error", "error", err, "session", s.ID)
			}
			return
		}
		select {
		case inbox <- data:
		case <-ctx.Done():
			return
		}
	}
}

func (s *Session) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-s.send:
			if !ok {
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := s.conn.Write(writeCtx, websocket.MessageText, message)
			cancel()
			if err != nil {
				slog.Debug("write error", "error", err, "session", s.ID)
				return
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := s.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}

		case <-ctx.Done():
			return
		}
	}
}

func (s *Session) handle(ctx context.Context, data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		slog.Warn("invalid message", "error", err, "session", s.ID)
		s.emitError(0, "invalid message")
		return
	}

	redrawOnly, err := s.dispatch(ctx, &msg)
	if err != nil {
		s.emitError(msg.Seq, err.Error())
		return
	}
	s.loadImages(ctx)
	if !redrawOnly {
		s.pushState()
	}
	s.pushDraw()
}

// dispatch applies one client message to the engine. It reports whether
// only the drawing changed, in which case the full state is not resent.
func (s *Session) dispatch(ctx context.Context, msg *Message) (bool, error) {
	e := s.engine

	switch msg.Type {
	case TypePointerDown:
		var p PointerPayload
		if err := decode(msg, &p); err != nil {
			return false, err
		}
		tool := p.Tool
		if tool == "" {
			tool = e.Tool()
		}
		if !tool.Valid() {
			return false, fmt.Errorf("unknown tool %q", tool)
		}
		e.OnPointerDown(s.canvasPoint(p), tool)

	case TypePointerMove:
		var p PointerPayload
		if err := decode(msg, &p); err != nil {
			return false, err
		}
		e.OnPointerMove(s.canvasPoint(p))
		return true, nil

	case TypePointerUp:
		var p PointerPayload
		if err := decode(msg, &p); err != nil {
			return false, err
		}
		e.OnPointerUp(s.canvasPoint(p))

	case TypePointerLeave:
		e.OnPointerLeave()

	case TypeDoubleClick:
		var p PointerPayload
		if err := decode(msg, &p); err != nil {
			return false, err
		}
		e.OnDoubleClick(s.canvasPoint(p))

	case TypeKeyDelete:
		e.OnDeleteKey()

	case TypeUndo:
		e.OnUndo()

	case TypeRedo:
		e.OnRedo()

	case TypeTextCommit:
		var p TextCommitPayload
		if err := decode(msg, &p); err != nil {
			return false, err
		}
		if p.Cancel {
			e.CancelTextEdit()
		} else if !e.CommitText(p.ID, p.Text) {
			return false, fmt.Errorf("no text element %q", p.ID)
		}

	case TypeToolSet:
		var p ToolPayload
		if err := decode(msg, &p); err != nil {
			return false, err
		}
		if !p.Tool.Valid() {
			return false, fmt.Errorf("unknown tool %q", p.Tool)
		}
		e.SetTool(p.Tool)
		if p.ComponentType != "" {
			e.SetComponentType(p.ComponentType)
		}
		if p.Tool == engine.ToolImage {
			e.SetPendingImage(p.ImageSrc, p.ImageWidth, p.ImageHeight)
		}

	case TypeViewSet:
		var p ViewPayload
		if err := decode(msg, &p); err != nil {
			return false, err
		}
		if p.Zoom <= 0 {
			return false, errors.New("zoom must be positive")
		}
		s.view = view{zoom: p.Zoom, panX: p.PanX, panY: p.PanY}
		return true, nil

	case TypeSelectionSet:
		var p SelectionPayload
		if err := decode(msg, &p); err != nil {
			return false, err
		}
		if p.ID == "" {
			e.Deselect()
		} else if !e.Select(p.ID) {
			return false, fmt.Errorf("no element %q", p.ID)
		}

	case TypeOptionsSet:
		opts := e.CanvasOptions()
		if err := decode(msg, &opts); err != nil {
			return false, err
		}
		e.SetCanvasOptions(opts)
		s.optionsDirty = true

	case TypeElementUpdate:
		var p ElementUpdatePayload
		if err := decode(msg, &p); err != nil {
			return false, err
		}
		if _, ok := e.Element(p.ID); !ok {
			return false, fmt.Errorf("no element %q", p.ID)
		}
		e.UpdateElement(p.ID, p.Patch)

	case TypeElementImage:
		var p ImageInsertPayload
		if err := decode(msg, &p); err != nil {
			return false, err
		}
		if p.Src == "" {
			return false, errors.New("src is required")
		}
		e.InsertImage(p.Src, p.X, p.Y, p.Width, p.Height)

	case TypeElementComponent:
		var p ComponentInsertPayload
		if err := decode(msg, &p); err != nil {
			return false, err
		}
		e.InsertComponent(p.ComponentType, p.X, p.Y)

	case TypeSceneClear:
		e.ClearScene()

	case TypeCodegenRequest:
		scene := e.Scene()
		s.emit(TypeCodegenResult, msg.Seq, codegen.Generate(scene.Elements, scene.CanvasOptions))
		return true, nil

	case TypeSceneSave:
		version, err := s.save(ctx)
		if err != nil {
			return false, err
		}
		s.emit(TypeSceneSaved, msg.Seq, SavedPayload{Version: version})

	default:
		slog.Warn("unknown message type", "type", msg.Type, "session", s.ID)
		return false, fmt.Errorf("unknown message type %q", msg.Type)
	}
	return false, nil
}

func (s *Session) save(ctx context.Context) (int32, error) {
	if s.readOnly {
		return 0, errReadOnly
	}
	rev := s.engine.History().Revision()
	version, err := s.hub.store.SaveScene(ctx, s.DrawingID, s.UserID, s.engine.Scene())
	if err != nil {
		slog.Error("save scene", "error", err, "drawing", s.DrawingID)
		return 0, errors.New("save failed")
	}
	s.version = version
	s.savedRev = rev
	s.optionsDirty = false
	return version, nil
}

// loadImages starts a background load for image sources that have neither
// a bitmap nor a load in flight. Results come back through s.loaded.
func (s *Session) loadImages(ctx context.Context) {
	if s.hub.loader == nil {
		return
	}
	var srcs []string
	for _, src := range s.engine.PendingImageSources() {
		if !s.inflight[src] {
			s.inflight[src] = true
			srcs = append(srcs, src)
		}
	}
	if len(srcs) == 0 {
		return
	}
	go func() {
		results := s.hub.loader.LoadAll(ctx, srcs)
		select {
		case s.loaded <- results:
		case <-ctx.Done():
		}
	}()
}

func (s *Session) canvasPoint(p PointerPayload) engine.Point {
	return engine.ScreenToCanvas(engine.Point{X: p.X, Y: p.Y}, s.view.zoom, s.view.panX, s.view.panY)
}

func (s *Session) pushState() {
	e := s.engine
	sel, _ := e.Selection()
	editing, _ := e.EditingElementID()
	s.emit(TypeSceneState, 0, StatePayload{
		Elements:      e.Elements(),
		CanvasOptions: e.CanvasOptions(),
		Selection:     sel,
		Editing:       editing,
		Tool:          e.Tool(),
		State:         e.State().String(),
		CanUndo:       e.CanUndo(),
		CanRedo:       e.CanRedo(),
		Dirty:         s.dirty(),
	})
}

func (s *Session) pushDraw() {
	s.emit(TypeDrawCommands, 0, DrawPayload{Commands: s.engine.DrawCommands()})
}

func (s *Session) emitError(seq int64, message string) {
	s.emit(TypeError, seq, ErrorPayload{Message: message})
}

func (s *Session) emit(typ string, seq int64, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		slog.Error("marshal payload", "error", err, "type", typ)
		return
	}
	data, err := json.Marshal(Message{Type: typ, Seq: seq, Payload: raw})
	if err != nil {
		slog.Error("marshal message", "error", err)
		return
	}

	select {
	case s.send <- data:
	default:
		slog.Warn("session send buffer full, dropping message", "session", s.ID, "type", typ)
	}
}

func decode(msg *Message, v any) error {
	if len(msg.Payload) == 0 {
		return fmt.Errorf("%s: missing payload", msg.Type)
	}
	if err := json.Unmarshal(msg.Payload, v); err != nil {
		return fmt.Errorf("%s: invalid payload: %w", msg.Type, err)
	}
	return nil
}
