//go:build js && wasm

package main

import (
	"encoding/json"
	"image"
	"syscall/js"

	"github.com/scenecraft/scenecraft/internal/codegen"
	"github.com/scenecraft/scenecraft/internal/document"
	"github.com/scenecraft/scenecraft/internal/engine"
)

var eng *engine.Engine

// loadedMarker stands in for a bitmap the browser decoded itself. The host
// draws images from imageSrc; the engine only needs to know the load worked.
var loadedMarker = image.NewRGBA(image.Rect(0, 0, 1, 1))

func main() {
	eng = engine.NewEngine()

	api := js.Global().Get("Object").New()

	// --- Commands (frontend → engine) ---
	api.Set("loadScene", js.FuncOf(loadScene))
	api.Set("loadSampleScene", js.FuncOf(loadSampleScene))
	api.Set("clearScene", js.FuncOf(clearScene))
	api.Set("setCanvasOptions", js.FuncOf(setCanvasOptions))
	api.Set("setTool", js.FuncOf(setTool))
	api.Set("setComponentType", js.FuncOf(setComponentType))
	api.Set("setPendingImage", js.FuncOf(setPendingImage))
	api.Set("pointerDown", js.FuncOf(pointerDown))
	api.Set("pointerMove", js.FuncOf(pointerMove))
	api.Set("pointerUp", js.FuncOf(pointerUp))
	api.Set("pointerLeave", js.FuncOf(pointerLeave))
	api.Set("doubleClick", js.FuncOf(doubleClick))
	api.Set("deleteSelected", js.FuncOf(deleteSelected))
	api.Set("undo", js.FuncOf(undo))
	api.Set("redo", js.FuncOf(redo))
	api.Set("select", js.FuncOf(selectElement))
	api.Set("deselect", js.FuncOf(deselect))
	api.Set("commitText", js.FuncOf(commitText))
	api.Set("cancelTextEdit", js.FuncOf(cancelTextEdit))
	api.Set("updateElement", js.FuncOf(updateElement))
	api.Set("insertImage", js.FuncOf(insertImage))
	api.Set("insertComponent", js.FuncOf(insertComponent))
	api.Set("imageLoaded", js.FuncOf(imageLoaded))

	// --- Queries (frontend ← engine) ---
	api.Set("render", js.FuncOf(render))
	api.Set("getScene", js.FuncOf(getScene))
	api.Set("getSelection", js.FuncOf(getSelection))
	api.Set("getSelectionBounds", js.FuncOf(getSelectionBounds))
	api.Set("getEditing", js.FuncOf(getEditing))
	api.Set("getState", js.FuncOf(getState))
	api.Set("pendingImages", js.FuncOf(pendingImages))
	api.Set("generateCode", js.FuncOf(generateCode))
	api.Set("screenToCanvas", js.FuncOf(screenToCanvas))

	js.Global().Set("scenecraftEngine", api)
	js.Global().Set("scenecraftWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func errorResult(msg string) interface{} {
	return js.ValueOf(map[string]interface{}{"error": msg})
}

func okResult() interface{} {
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func point(args []js.Value) (engine.Point, bool) {
	if len(args) < 2 {
		return engine.Point{}, false
	}
	return engine.Point{X: args[0].Float(), Y: args[1].Float()}, true
}

func toJSON(v interface{}) interface{} {
	data, err := json.Marshal(v)
	if err != nil {
		return errorResult(err.Error())
	}
	return js.ValueOf(string(data))
}

// --- Command Handlers ---

func loadScene(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("missing scene JSON")
	}
	scene, err := document.DecodeScene([]byte(args[0].String()))
	if err != nil {
		return errorResult(err.Error())
	}
	eng.LoadScene(scene)
	return okResult()
}

func loadSampleScene(this js.Value, args []js.Value) interface{} {
	eng.LoadScene(document.NewSampleScene())
	return okResult()
}

func clearScene(this js.Value, args []js.Value) interface{} {
	eng.ClearScene()
	return nil
}

func setCanvasOptions(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("missing options JSON")
	}
	opts := eng.CanvasOptions()
	if err := json.Unmarshal([]byte(args[0].String()), &opts); err != nil {
		return errorResult(err.Error())
	}
	eng.SetCanvasOptions(opts)
	return okResult()
}

func setTool(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	eng.SetTool(engine.Tool(args[0].String()))
	return nil
}

func setComponentType(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	eng.SetComponentType(document.ComponentType(args[0].String()))
	return nil
}

func setPendingImage(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		eng.SetPendingImage("", 0, 0)
		return nil
	}
	var w, h float64
	if len(args) >= 3 {
		w, h = args[1].Float(), args[2].Float()
	}
	eng.SetPendingImage(args[0].String(), w, h)
	return nil
}

func pointerDown(this js.Value, args []js.Value) interface{} {
	p, ok := point(args)
	if !ok {
		return nil
	}
	tool := eng.Tool()
	if len(args) >= 3 && args[2].Type() == js.TypeString {
		tool = engine.Tool(args[2].String())
	}
	eng.OnPointerDown(p, tool)
	return nil
}

func pointerMove(this js.Value, args []js.Value) interface{} {
	p, ok := point(args)
	if !ok {
		return js.ValueOf(false)
	}
	return js.ValueOf(eng.OnPointerMove(p))
}

func pointerUp(this js.Value, args []js.Value) interface{} {
	p, ok := point(args)
	if !ok {
		eng.OnPointerLeave()
		return nil
	}
	eng.OnPointerUp(p)
	return nil
}

func pointerLeave(this js.Value, args []js.Value) interface{} {
	eng.OnPointerLeave()
	return nil
}

func doubleClick(this js.Value, args []js.Value) interface{} {
	p, ok := point(args)
	if !ok || !eng.OnDoubleClick(p) {
		return js.Null()
	}
	id, _ := eng.EditingElementID()
	return js.ValueOf(id)
}

func deleteSelected(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.OnDeleteKey())
}

func undo(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.OnUndo())
}

func redo(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.OnRedo())
}

func selectElement(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(false)
	}
	return js.ValueOf(eng.Select(args[0].String()))
}

func deselect(this js.Value, args []js.Value) interface{} {
	eng.Deselect()
	return nil
}

func commitText(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf(false)
	}
	return js.ValueOf(eng.CommitText(args[0].String(), args[1].String()))
}

func cancelTextEdit(this js.Value, args []js.Value) interface{} {
	eng.CancelTextEdit()
	return nil
}

func updateElement(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return errorResult("missing id or patch JSON")
	}
	var patch document.ElementPatch
	if err := json.Unmarshal([]byte(args[1].String()), &patch); err != nil {
		return errorResult(err.Error())
	}
	if !eng.UpdateElement(args[0].String(), patch) {
		return errorResult("no change")
	}
	return okResult()
}

func insertImage(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return js.Null()
	}
	var w, h float64
	if len(args) >= 5 {
		w, h = args[3].Float(), args[4].Float()
	}
	return js.ValueOf(eng.InsertImage(args[0].String(), args[1].Float(), args[2].Float(), w, h))
}

func insertComponent(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return js.Null()
	}
	ct := document.ComponentType(args[0].String())
	return js.ValueOf(eng.InsertComponent(ct, args[1].Float(), args[2].Float()))
}

// imageLoaded reports the browser's load result for src.
func imageLoaded(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return nil
	}
	var img image.Image
	if args[1].Bool() {
		img = loadedMarker
	}
	return js.ValueOf(eng.AttachBitmap(args[0].String(), img))
}

// --- Query Handlers ---

func render(this js.Value, args []js.Value) interface{} {
	out, err := engine.DrawCommandsToJSON(eng.DrawCommands())
	if err != nil {
		return errorResult(err.Error())
	}
	return js.ValueOf(out)
}

func getSelectionBounds(this js.Value, args []js.Value) interface{} {
	id, ok := eng.Selection()
	if !ok {
		return js.Null()
	}
	el, ok := eng.Element(id)
	if !ok {
		return js.Null()
	}
	return js.ValueOf(engine.RectToJSON(engine.Bounds(el)))
}

func getScene(this js.Value, args []js.Value) interface{} {
	return toJSON(eng.Scene())
}

func getSelection(this js.Value, args []js.Value) interface{} {
	id, ok := eng.Selection()
	if !ok {
		return js.Null()
	}
	return js.ValueOf(id)
}

func getEditing(this js.Value, args []js.Value) interface{} {
	id, ok := eng.EditingElementID()
	if !ok {
		return js.Null()
	}
	return js.ValueOf(id)
}

func getState(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(map[string]interface{}{
		"tool":    string(eng.Tool()),
		"state":   eng.State().String(),
		"canUndo": eng.CanUndo(),
		"canRedo": eng.CanRedo(),
	})
}

func pendingImages(this js.Value, args []js.Value) interface{} {
	return toJSON(eng.PendingImageSources())
}

func generateCode(this js.Value, args []js.Value) interface{} {
	scene := eng.Scene()
	return toJSON(codegen.Generate(scene.Elements, scene.CanvasOptions))
}

func screenToCanvas(this js.Value, args []js.Value) interface{} {
	if len(args) < 5 {
		return js.Null()
	}
	p := engine.ScreenToCanvas(engine.Point{X: args[0].Float(), Y: args[1].Float()},
		args[2].Float(), args[3].Float(), args[4].Float())
	return js.ValueOf(map[string]interface{}{"x": p.X, "y": p.Y})
}
