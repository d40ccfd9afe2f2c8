package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"voxelscript.dev/internal/api"
	"voxelscript.dev/internal/protocol"
	"voxelscript.dev/internal/sim/world"
)

// Server speaks the computer session protocol over websocket. One connection
// is one computer: HELLO/WELCOME handshake, then CALLs answered in order on
// the read loop (a computer runs one instruction stream, so calls from it
// are naturally FIFO) while a pump goroutine pushes queued events.
type Server struct {
	world    *world.World
	registry *api.Registry
	log      *log.Logger

	upgrader websocket.Upgrader
}

func NewServer(w *world.World, registry *api.Registry, logger *log.Logger) *Server {
	return &Server{
		world:    w,
		registry: registry,
		log:      logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		join, out := s.handshake(ctx, conn)
		if join.Computer == nil {
			return
		}
		env := api.Env{World: s.world, Computer: join.Computer}
		computerID := join.Welcome.ComputerID

		// Writer goroutine: sole owner of the connection's write side after
		// the handshake.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case b, ok := <-out:
					if !ok {
						return
					}
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		// Event pump: drains the computer's inbox into EVENT messages until
		// the queue closes (teardown) or the connection drops.
		go func() {
			for {
				e, err := join.Computer.NextEvent(ctx)
				if err != nil {
					return
				}
				s.send(ctx, out, protocol.EventMsg{
					Type:            protocol.TypeEvent,
					ProtocolVersion: protocol.Version,
					Tick:            s.world.Tick(),
					Name:            e.Name,
					Args:            e.Args,
				})
			}
		}()

		// Reader loop: one CALL at a time, one RESULT per CALL.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				cancel()
				break
			}
			base, err := protocol.DecodeBase(msg)
			if err != nil || base.Type != protocol.TypeCall {
				continue
			}
			var call protocol.CallMsg
			if err := json.Unmarshal(msg, &call); err != nil {
				continue
			}
			if call.ProtocolVersion != protocol.Version {
				s.send(ctx, out, protocol.ResultMsg{
					Type:            protocol.TypeResult,
					ProtocolVersion: protocol.Version,
					CallID:          call.ID,
					Code:            protocol.ErrProtoBadRequest,
					Message:         "bad protocol_version",
				})
				continue
			}
			s.send(ctx, out, s.registry.Invoke(ctx, env, call))
		}

		// Cleanup: tear the computer down at the next tick boundary.
		lctx, lcancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer lcancel()
		if err := s.world.RequestLeave(lctx, computerID); err != nil && s.log != nil {
			s.log.Printf("leave %s: %v", computerID, err)
		}
	}
}

func (s *Server) handshake(ctx context.Context, conn *websocket.Conn) (world.JoinResponse, chan []byte) {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return world.JoinResponse{}, nil
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		closePolicy(conn, "expected HELLO")
		return world.JoinResponse{}, nil
	}

	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		return world.JoinResponse{}, nil
	}
	if hello.ProtocolVersion != protocol.Version {
		closePolicy(conn, "bad protocol_version")
		return world.JoinResponse{}, nil
	}

	maxQ := hello.Capabilities.MaxQueue
	if maxQ <= 0 {
		maxQ = 64
	}
	if maxQ > 256 {
		maxQ = 256
	}
	out := make(chan []byte, maxQ)

	jctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	resp, err := s.world.RequestJoin(jctx, hello.ComputerName)
	if err != nil {
		closePolicy(conn, "join failed")
		return world.JoinResponse{}, nil
	}

	if err := writeJSON(conn, resp.Welcome); err != nil {
		// Welcome never reached the client; undo the join.
		lctx, lcancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer lcancel()
		_ = s.world.RequestLeave(lctx, resp.Welcome.ComputerID)
		return world.JoinResponse{}, nil
	}
	return resp, out
}

// send marshals and queues one outbound message, dropping it if the session
// is shutting down. RESULT and EVENT ordering is preserved per connection by
// the single writer goroutine.
func (s *Server) send(ctx context.Context, out chan []byte, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	select {
	case out <- b:
	case <-ctx.Done():
	}
}

func closePolicy(conn *websocket.Conn, reason string) {
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason),
		time.Now().Add(time.Second))
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}
