package sim

import (
	"fmt"
	"net"
	"os/exec"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
)

// Config describes how to launch and reach the SUMO process.
type Config struct {
	Binary          string // "sumo" or "sumo-gui"
	NetFile         string
	RouteFile       string
	AdditionalFiles []string
	StepLength      float64 // seconds, 0 means SUMO's default
	Port            int     // 0 picks a free port
	ConnectTimeout  time.Duration
}

// TraCISession drives a SUMO child process over a TraCI TCP connection.
type TraCISession struct {
	conn   net.Conn
	proc   *exec.Cmd
	closed bool
}

var _ Session = (*TraCISession)(nil)

// Start launches SUMO with --remote-port and connects to it. Any failure here
// is a startup failure: the process is torn down and no step has happened.
func Start(cfg Config) (*TraCISession, error) {
	if cfg.Binary == "" {
		cfg.Binary = "sumo"
	}
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = 30 * time.Second
	}
	if cfg.NetFile == "" || cfg.RouteFile == "" {
		return nil, fmt.Errorf("start sumo: net file and route file are required")
	}

	port := cfg.Port
	if port == 0 {
		p, err := freePort()
		if err != nil {
			return nil, fmt.Errorf("start sumo: %w", err)
		}
		port = p
	}

	args := []string{
		"-n", cfg.NetFile,
		"-r", cfg.RouteFile,
		"--remote-port", strconv.Itoa(port),
		"--no-step-log", "true",
	}
	if cfg.StepLength > 0 {
		args = append(args, "--step-length", strconv.FormatFloat(cfg.StepLength, 'f', -1, 64))
	}
	for _, f := range cfg.AdditionalFiles {
		args = append(args, "--additional-files", f)
	}

	proc := exec.Command(cfg.Binary, args...)
	if err := proc.Start(); err != nil {
		return nil, fmt.Errorf("start sumo: %w", err)
	}

	log.WithFields(log.Fields{
		"binary": cfg.Binary,
		"net":    cfg.NetFile,
		"routes": cfg.RouteFile,
		"port":   port,
	}).Info("Launched simulator")

	conn, err := dialWithRetry(port, cfg.ConnectTimeout)
	if err != nil {
		proc.Process.Kill()
		proc.Wait()
		return nil, fmt.Errorf("connect to sumo on port %d: %w", port, err)
	}

	s := &TraCISession{conn: conn, proc: proc}
	if err := s.handshake(); err != nil {
		s.Close()
		return nil, fmt.Errorf("traci handshake: %w", err)
	}
	return s, nil
}

func freePort() (int, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}

func dialWithRetry(port int, timeout time.Duration) (net.Conn, error) {
	addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(port))
	deadline := time.Now().Add(timeout)
	var lastErr error
	for time.Now().Before(deadline) {
		conn, err := net.DialTimeout("tcp", addr, time.Second)
		if err == nil {
			return conn, nil
		}
		lastErr = err
		time.Sleep(200 * time.Millisecond)
	}
	return nil, lastErr
}

// NewOverConn wraps an already-established TraCI connection. The caller owns
// process lifecycle; Close only closes the connection.
func NewOverConn(conn net.Conn) *TraCISession {
	return &TraCISession{conn: conn}
}

func (s *TraCISession) handshake() error {
	r, err := s.roundTrip(cmdGetVersion, nil)
	if err != nil {
		return err
	}
	id, _, err := r.readCommandHeader()
	if err != nil {
		return err
	}
	if id != cmdGetVersion {
		return fmt.Errorf("unexpected version response 0x%02x", id)
	}
	apiVersion, err := r.readInt()
	if err != nil {
		return err
	}
	serverVersion, err := r.readString()
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"api_version": apiVersion,
		"server":      serverVersion,
	}).Info("Connected to simulator")
	return nil
}

// roundTrip sends one command and returns a reader positioned after the
// status command of the reply.
func (s *TraCISession) roundTrip(cmd byte, payload []byte) (*reader, error) {
	if s.closed {
		return nil, ErrClosed
	}
	if _, err := s.conn.Write(frame(cmd, payload)); err != nil {
		return nil, fmt.Errorf("write command 0x%02x: %w", cmd, err)
	}
	r, err := readMessage(s.conn)
	if err != nil {
		return nil, fmt.Errorf("read reply to 0x%02x: %w", cmd, err)
	}
	if err := r.readStatus(cmd); err != nil {
		return nil, err
	}
	return r, nil
}

// Step advances the simulation by one step. The target time 0.0 asks SUMO for
// exactly one interval; the reply's subscription results are drained and
// discarded since this client subscribes to nothing.
func (s *TraCISession) Step() error {
	var p packet
	p.writeDouble(0.0)
	r, err := s.roundTrip(cmdSimStep, p.buf.Bytes())
	if err != nil {
		return err
	}
	if r.remaining() >= 4 {
		if _, err := r.readInt(); err != nil {
			return err
		}
	}
	return nil
}

// getVariable performs a get-variable round trip and positions the reader on
// the typed value, returning the value type byte.
func (s *TraCISession) getVariable(cmd, respCmd, variable byte, objectID string) (*reader, byte, error) {
	var p packet
	p.writeByte(variable)
	p.writeString(objectID)

	r, err := s.roundTrip(cmd, p.buf.Bytes())
	if err != nil {
		return nil, 0, err
	}
	id, _, err := r.readCommandHeader()
	if err != nil {
		return nil, 0, err
	}
	if id != respCmd {
		return nil, 0, fmt.Errorf("unexpected response command 0x%02x", id)
	}
	if _, err := r.readByte(); err != nil { // variable echo
		return nil, 0, err
	}
	if _, err := r.readString(); err != nil { // object id echo
		return nil, 0, err
	}
	valueType, err := r.readByte()
	if err != nil {
		return nil, 0, err
	}
	return r, valueType, nil
}

func (s *TraCISession) vehicleDouble(variable byte, id string) (float64, error) {
	r, vt, err := s.getVariable(cmdGetVehicleVar, respGetVehicleVar, variable, id)
	if err != nil {
		return 0, err
	}
	if vt != typeDouble {
		return 0, fmt.Errorf("vehicle variable 0x%02x: unexpected type 0x%02x", variable, vt)
	}
	return r.readDouble()
}

func (s *TraCISession) simDouble(variable byte) (float64, error) {
	r, vt, err := s.getVariable(cmdGetSimVar, respGetSimVar, variable, "")
	if err != nil {
		return 0, err
	}
	if vt != typeDouble {
		return 0, fmt.Errorf("sim variable 0x%02x: unexpected type 0x%02x", variable, vt)
	}
	return r.readDouble()
}

func (s *TraCISession) MinExpectedVehicles() (int, error) {
	r, vt, err := s.getVariable(cmdGetSimVar, respGetSimVar, varMinExpected, "")
	if err != nil {
		return 0, err
	}
	if vt != typeInteger {
		return 0, fmt.Errorf("min expected vehicles: unexpected type 0x%02x", vt)
	}
	n, err := r.readInt()
	return int(n), err
}

func (s *TraCISession) VehicleIDs() ([]string, error) {
	r, vt, err := s.getVariable(cmdGetVehicleVar, respGetVehicleVar, varIDList, "")
	if err != nil {
		return nil, err
	}
	if vt != typeStringList {
		return nil, fmt.Errorf("vehicle id list: unexpected type 0x%02x", vt)
	}
	return r.readStringList()
}

func (s *TraCISession) VehicleType(id string) (string, error) {
	r, vt, err := s.getVariable(cmdGetVehicleVar, respGetVehicleVar, varTypeID, id)
	if err != nil {
		return "", err
	}
	if vt != typeString {
		return "", fmt.Errorf("vehicle type: unexpected type 0x%02x", vt)
	}
	return r.readString()
}

func (s *TraCISession) Speed(id string) (float64, error) {
	return s.vehicleDouble(varSpeed, id)
}

func (s *TraCISession) Distance(id string) (float64, error) {
	return s.vehicleDouble(varDistance, id)
}

func (s *TraCISession) DeltaT() (float64, error) {
	return s.simDouble(varDeltaT)
}

func (s *TraCISession) Time() (float64, error) {
	return s.simDouble(varTime)
}

// Close tells the simulator to shut down, closes the connection and reaps the
// child process. Errors from the close command are ignored; the session is
// unusable afterwards either way.
func (s *TraCISession) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	if _, err := s.conn.Write(frame(cmdClose, nil)); err == nil {
		if r, err := readMessage(s.conn); err == nil {
			r.readStatus(cmdClose)
		}
	}
	err := s.conn.Close()
	if s.proc != nil {
		if werr := s.proc.Wait(); werr != nil && err == nil {
			err = werr
		}
	}
	return err
}
