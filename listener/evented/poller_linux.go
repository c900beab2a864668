//go:build linux

// SPDX-License-Identifier: GPL-3.0-or-later

package evented

import (
	"golang.org/x/sys/unix"
)

// epollPoller implements [poller] on top of Linux epoll, using
// golang.org/x/sys/unix directly — the same package the teacher's own
// errclass subpackage uses for its unix-only errno tables. A second fd
// (wakeFd), created with eventfd(2), is registered for readability so
// that [epollPoller.Wake] can interrupt a blocked epoll_wait from any
// goroutine, bridging worker-pool notifications into the reactor's
// single epoll_wait loop (§9).
type epollPoller struct {
	epfd   int
	wakeFd int
}

var _ poller = (*epollPoller)(nil)

// newPoller creates the epoll instance and its wake-up eventfd,
// registering the latter for edge-triggered readability.
func newPoller() (*epollPoller, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, err
	}
	wakeFd, err := unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
	if err != nil {
		unix.Close(epfd)
		return nil, err
	}
	p := &epollPoller{epfd: epfd, wakeFd: wakeFd}
	ev := &unix.EpollEvent{Events: unix.EPOLLIN | unix.EPOLLET, Fd: int32(wakeToken)}
	if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, wakeFd, ev); err != nil {
		unix.Close(wakeFd)
		unix.Close(epfd)
		return nil, err
	}
	return p, nil
}

// wakeToken is the sentinel token value distinguishing the wake-up
// eventfd from the listener and from any slab-addressed connection.
const wakeToken token = listenerToken - 1

func toEpollEvents(interest event) uint32 {
	var e uint32 = unix.EPOLLONESHOT | unix.EPOLLET | unix.EPOLLRDHUP
	if interest&eventRead != 0 {
		e |= unix.EPOLLIN
	}
	if interest&eventWrite != 0 {
		e |= unix.EPOLLOUT
	}
	return e
}

// Register implements [poller].
func (p *epollPoller) Register(fd int, tok token, interest event) error {
	ev := &unix.EpollEvent{Events: toEpollEvents(interest), Fd: int32(tok)}
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_ADD, fd, ev)
}

// Rearm implements [poller].
func (p *epollPoller) Rearm(fd int, tok token, interest event) error {
	ev := &unix.EpollEvent{Events: toEpollEvents(interest), Fd: int32(tok)}
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_MOD, fd, ev)
}

// Deregister implements [poller].
func (p *epollPoller) Deregister(fd int) error {
	err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_DEL, fd, nil)
	if err == unix.ENOENT {
		return nil
	}
	return err
}

// Wait implements [poller]. A wake-up event never itself produces a
// [readyEvent]: it only causes Wait to return so the caller can drain
// whatever triggered it.
func (p *epollPoller) Wait(dst []readyEvent) ([]readyEvent, error) {
	var raw [128]unix.EpollEvent
	for {
		n, err := unix.EpollWait(p.epfd, raw[:], -1)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return dst, err
		}
		for i := 0; i < n; i++ {
			tok := token(raw[i].Fd)
			if tok == wakeToken {
				p.drainWake()
				continue
			}
			dst = append(dst, readyEvent{tok: tok, events: fromEpollEvents(raw[i].Events)})
		}
		return dst, nil
	}
}

func fromEpollEvents(e uint32) event {
	var out event
	if e&unix.EPOLLIN != 0 {
		out |= eventRead
	}
	if e&unix.EPOLLOUT != 0 {
		out |= eventWrite
	}
	if e&(unix.EPOLLHUP|unix.EPOLLRDHUP) != 0 {
		out |= eventHup
	}
	if e&unix.EPOLLERR != 0 {
		out |= eventErr
	}
	return out
}

func (p *epollPoller) drainWake() {
	var buf [8]byte
	for {
		_, err := unix.Read(p.wakeFd, buf[:])
		if err == unix.EAGAIN {
			return
		}
		if err != nil {
			return
		}
	}
}

// Wake implements [poller].
func (p *epollPoller) Wake() error {
	var buf [8]byte
	buf[0] = 1
	_, err := unix.Write(p.wakeFd, buf[:])
	if err == unix.EAGAIN {
		// The eventfd counter is already non-zero; a pending wake-up
		// will still unblock Wait, so this is not an error.
		return nil
	}
	return err
}

// Close implements [poller].
func (p *epollPoller) Close() error {
	unix.Close(p.wakeFd)
	return unix.Close(p.epfd)
}

// newPollerPlatform constructs the platform poller, satisfying the
// factory func referenced from listener_unix.go.
func newPollerPlatform() (poller, error) {
	return newPoller()
}
