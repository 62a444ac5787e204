package session

import (
	"encoding/json"

	"github.com/scenecraft/scenecraft/internal/document"
	"github.com/scenecraft/scenecraft/internal/engine"
)

// Message is the envelope for every frame in both directions. Seq is echoed
// back on errors so a client can match them to its request.
type Message struct {
	Type    string          `json:"type"`
	Seq     int64           `json:"seq,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Client to server.
const (
	TypePointerDown      = "pointer.down"
	TypePointerMove      = "pointer.move"
	TypePointerUp        = "pointer.up"
	TypePointerLeave     = "pointer.leave"
	TypeDoubleClick      = "dblclick"
	TypeKeyDelete        = "key.delete"
	TypeUndo             = "history.undo"
	TypeRedo             = "history.redo"
	TypeTextCommit       = "text.commit"
	TypeToolSet          = "tool.set"
	TypeViewSet          = "view.set"
	TypeSelectionSet     = "selection.set"
	TypeOptionsSet       = "options.set"
	TypeElementUpdate    = "element.update"
	TypeElementImage     = "element.image"
	TypeElementComponent = "element.component"
	TypeSceneClear       = "scene.clear"
	TypeCodegenRequest   = "codegen.request"
	TypeSceneSave        = "scene.save"
)

// Server to client.
const (
	TypeWelcome       = "welcome"
	TypeSceneState    = "scene.state"
	TypeDrawCommands  = "draw.commands"
	TypeCodegenResult = "codegen.result"
	TypeSceneSaved    = "scene.saved"
	TypeError         = "error"
)

// PointerPayload carries a pointer position in screen coordinates. The
// session maps it into canvas space with the current view.
type PointerPayload struct {
	X    float64     `json:"x"`
	Y    float64     `json:"y"`
	Tool engine.Tool `json:"tool,omitempty"`
}

type ViewPayload struct {
	Zoom float64 `json:"zoom"`
	PanX float64 `json:"panX"`
	PanY float64 `json:"panY"`
}

type ToolPayload struct {
	Tool          engine.Tool            `json:"tool"`
	ComponentType document.ComponentType `json:"componentType,omitempty"`
	ImageSrc      string                 `json:"imageSrc,omitempty"`
	ImageWidth    float64                `json:"imageWidth,omitempty"`
	ImageHeight   float64                `json:"imageHeight,omitempty"`
}

type TextCommitPayload struct {
	ID     string `json:"id"`
	Text   string `json:"text"`
	Cancel bool   `json:"cancel,omitempty"`
}

type SelectionPayload struct {
	ID string `json:"id"`
}

type ElementUpdatePayload struct {
	ID    string               `json:"id"`
	Patch document.ElementPatch `json:"patch"`
}

type ImageInsertPayload struct {
	Src    string  `json:"src"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
}

type ComponentInsertPayload struct {
	ComponentType document.ComponentType `json:"componentType"`
	X             float64                `json:"x"`
	Y             float64                `json:"y"`
}

type WelcomePayload struct {
	SessionID string `json:"sessionId"`
	DrawingID string `json:"drawingId,omitempty"`
	Version   int32  `json:"version"`
	ReadOnly  bool   `json:"readOnly,omitempty"`
}

type StatePayload struct {
	Elements      []document.Element     `json:"elements"`
	CanvasOptions document.CanvasOptions `json:"canvasOptions"`
	Selection     string                 `json:"selection,omitempty"`
	Editing       string                 `json:"editing,omitempty"`
	Tool          engine.Tool            `json:"tool"`
	State         string                 `json:"state"`
	CanUndo       bool                   `json:"canUndo"`
	CanRedo       bool                   `json:"canRedo"`
	Dirty         bool                   `json:"dirty"`
}

type DrawPayload struct {
	Commands []engine.DrawCommand `json:"commands"`
}

type SavedPayload struct {
	Version int32 `json:"version"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
