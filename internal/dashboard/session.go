package dashboard

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"iris-app/internal/ml"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Session control names besides the four slider keys.
const (
	ControlColumns      = "columns"
	ControlColumnAdd    = "column_add"
	ControlColumnRemove = "column_remove"
)

// Event types sent to the client.
const (
	EventPrediction = "prediction"
	EventScatter    = "scatter"
	EventError      = "error"
)

const (
	sessionReadLimit = 4096
	sessionWriteWait = 5 * time.Second
)

// ControlMessage is one user interaction: the control that changed and its
// new value.
type ControlMessage struct {
	Control string          `json:"control"`
	Value   json.RawMessage `json:"value"`
}

// Event is the typed output of a control handler.
type Event struct {
	Type       string         `json:"type"`
	Control    string         `json:"control,omitempty"`
	Prediction *ml.Prediction `json:"prediction,omitempty"`
	Columns    []string       `json:"columns,omitempty"`
	Chart      *ScatterSpec   `json:"chart,omitempty"`
	Input      *ml.Input      `json:"input,omitempty"`
	Error      string         `json:"error,omitempty"`
	Status     int            `json:"status,omitempty"`
}

type controlHandler func(value json.RawMessage) (Event, error)

// session holds one connection's control state. Slider values and the
// column selection never outlive the connection.
type session struct {
	res       *Resources
	input     ml.Input
	selection *Selection
	handlers  map[string]controlHandler
}

func newSession(res *Resources) *session {
	s := &session{
		res:       res,
		input:     DefaultInput(),
		selection: res.NewSelection(),
	}
	s.handlers = map[string]controlHandler{
		ControlColumns:      s.handleColumns,
		ControlColumnAdd:    s.handleColumnAdd,
		ControlColumnRemove: s.handleColumnRemove,
	}
	for _, sl := range Sliders() {
		s.handlers[sl.Key] = s.sliderHandler(sl)
	}
	return s
}

// handle routes msg to its control's handler. Errors become error events
// and leave the session state as it was.
func (s *session) handle(msg ControlMessage) Event {
	h, ok := s.handlers[msg.Control]
	if !ok {
		return errorEvent(msg.Control, fmt.Errorf("%w: %q", ErrUnknownControl, msg.Control))
	}
	ev, err := h(msg.Value)
	if err != nil {
		return errorEvent(msg.Control, err)
	}
	ev.Control = msg.Control
	return ev
}

// metricLabel bounds label cardinality to the known controls.
func (s *session) metricLabel(control string) string {
	if _, ok := s.handlers[control]; ok {
		return control
	}
	return "unknown"
}

// initial returns the events that render the page state on connect.
func (s *session) initial() []Event {
	events := []Event{s.scatterEvent()}
	ev, err := s.predictionEvent()
	if err != nil {
		ev = errorEvent("", err)
	}
	return append(events, ev)
}

func (s *session) sliderHandler(sl Slider) controlHandler {
	return func(value json.RawMessage) (Event, error) {
		var v float64
		if err := json.Unmarshal(value, &v); err != nil {
			return Event{}, fmt.Errorf("%w: %s expects a number", ErrBadValue, sl.Key)
		}
		snapped, err := sl.Snap(v)
		if err != nil {
			return Event{}, err
		}
		next, err := withValue(s.input, sl.Key, snapped)
		if err != nil {
			return Event{}, err
		}

		prev := s.input
		s.input = next
		ev, err := s.predictionEvent()
		if err != nil {
			// ErrUnavailable keeps the new slider value; anything else rolls back.
			if statusFor(err) != http.StatusServiceUnavailable {
				s.input = prev
			}
			return Event{}, err
		}
		return ev, nil
	}
}

func (s *session) handleColumns(value json.RawMessage) (Event, error) {
	var cols []string
	if err := json.Unmarshal(value, &cols); err != nil {
		return Event{}, fmt.Errorf("%w: columns expects a list of names", ErrBadValue)
	}
	if err := s.selection.Set(cols); err != nil {
		return Event{}, err
	}
	return s.scatterEvent(), nil
}

func (s *session) handleColumnAdd(value json.RawMessage) (Event, error) {
	var col string
	if err := json.Unmarshal(value, &col); err != nil {
		return Event{}, fmt.Errorf("%w: column_add expects a name", ErrBadValue)
	}
	if err := s.selection.Add(col); err != nil {
		return Event{}, err
	}
	return s.scatterEvent(), nil
}

func (s *session) handleColumnRemove(value json.RawMessage) (Event, error) {
	var col string
	if err := json.Unmarshal(value, &col); err != nil {
		return Event{}, fmt.Errorf("%w: column_remove expects a name", ErrBadValue)
	}
	s.selection.Remove(col)
	return s.scatterEvent(), nil
}

func (s *session) predictionEvent() (Event, error) {
	pred, err := s.res.Predict(s.input)
	if err != nil {
		return Event{}, err
	}
	in := s.input
	return Event{Type: EventPrediction, Prediction: &pred, Input: &in}, nil
}

func (s *session) scatterEvent() Event {
	spec, _ := BuildScatter(s.res.Dataset, s.selection)
	return Event{Type: EventScatter, Columns: s.selection.Columns(), Chart: spec}
}

func errorEvent(control string, err error) Event {
	return Event{Type: EventError, Control: control, Error: err.Error(), Status: statusFor(err)}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()
	conn.SetReadLimit(sessionReadLimit)

	s.trackSession(conn)
	defer s.untrackSession(conn)
	if m := s.res.Metrics; m != nil {
		m.SessionsActive().Add(1)
		defer m.SessionsActive().Add(-1)
	}

	sess := newSession(s.res)
	log.Debug().Str("remote", r.RemoteAddr).Msg("Session opened")

	for _, ev := range sess.initial() {
		if err := writeEvent(conn, ev); err != nil {
			return
		}
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Msg("Session closed unexpectedly")
			}
			return
		}

		var msg ControlMessage
		var ev Event
		if err := json.Unmarshal(data, &msg); err != nil {
			ev = errorEvent("", fmt.Errorf("%w: %v", ErrBadValue, err))
		} else {
			if m := s.res.Metrics; m != nil {
				m.SessionEventsInc(sess.metricLabel(msg.Control))
			}
			ev = sess.handle(msg)
		}

		if err := writeEvent(conn, ev); err != nil {
			return
		}
	}
}

func writeEvent(conn *websocket.Conn, ev Event) error {
	conn.SetWriteDeadline(time.Now().Add(sessionWriteWait))
	if err := conn.WriteJSON(ev); err != nil {
		log.Error().Err(err).Str("event", ev.Type).Msg("Failed to send session event")
		return err
	}
	return nil
}
