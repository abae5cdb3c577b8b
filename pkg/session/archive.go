// Copyright 2026 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package session

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pkg/sftp"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

var (
	ErrArchiveConfig = errors.New("sftp settings incomplete")
	ErrKeyFile       = errors.New("private key unavailable")
)

// 📡 ArchiveConfig configures the key-authenticated SFTP session
type ArchiveConfig struct {
	Host          string
	Port          int
	Username      string
	KeyDir        string
	KeyFile       string
	KeyPassphrase string
	KnownHosts    string
	Timeout       time.Duration
}

// KeyPath returns the location of the private key.
func (c ArchiveConfig) KeyPath() string {
	if filepath.IsAbs(c.KeyFile) {
		return c.KeyFile
	}
	return filepath.Join(c.KeyDir, c.KeyFile)
}

// 📦 Archive is the remote certificate store reached over SFTP
type Archive struct {
	client  *sftp.Client
	ssh     *ssh.Client
	conn    net.Conn
	timeout time.Duration
}

// 🔑 LoadSigner reads and parses a private key, decrypting it when a
// passphrase is given
func LoadSigner(path, passphrase string) (ssh.Signer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("%w: reading %s: %s", ErrKeyFile, path, err.Error())
	}

	var signer ssh.Signer
	if passphrase != "" {
		signer, err = ssh.ParsePrivateKeyWithPassphrase(data, []byte(passphrase))
	} else {
		signer, err = ssh.ParsePrivateKey(data)
	}
	if err != nil {
		var missing *ssh.PassphraseMissingError
		if errors.As(err, &missing) {
			return nil, errors.Errorf("%w: %s is encrypted and no passphrase is configured", ErrKeyFile, path)
		}
		return nil, errors.Errorf("%w: parsing %s: %s", ErrKeyFile, path, err.Error())
	}
	return signer, nil
}

// 🔌 DialArchive loads the key, connects, authenticates and opens SFTP
func DialArchive(ctx context.Context, cfg ArchiveConfig) (*Archive, error) {
	logger := zerolog.Ctx(ctx)

	if cfg.Host == "" || cfg.Username == "" || cfg.KeyFile == "" {
		return nil, errors.Errorf("%w: host, username and key file are required", ErrArchiveConfig)
	}
	if cfg.Port == 0 {
		cfg.Port = 22
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	signer, err := LoadSigner(cfg.KeyPath(), cfg.KeyPassphrase)
	if err != nil {
		return nil, err
	}

	hostKeys := ssh.InsecureIgnoreHostKey()
	if cfg.KnownHosts != "" {
		hostKeys, err = knownhosts.New(cfg.KnownHosts)
		if err != nil {
			return nil, errors.Errorf("loading known hosts: %w", err)
		}
	} else {
		logger.Warn().Str("host", cfg.Host).Msg("no known_hosts configured, accepting any sftp host key")
	}

	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	dialer := &net.Dialer{Timeout: cfg.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, errors.Errorf("dialing %s: %w", addr, err)
	}

	_ = conn.SetDeadline(time.Now().Add(cfg.Timeout))
	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, &ssh.ClientConfig{
		User:            cfg.Username,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
		HostKeyCallback: hostKeys,
		Timeout:         cfg.Timeout,
	})
	if err != nil {
		conn.Close()
		return nil, errors.Errorf("ssh handshake with %s as %s: %w", addr, cfg.Username, err)
	}
	_ = conn.SetDeadline(time.Time{})

	sshClient := ssh.NewClient(sshConn, chans, reqs)
	client, err := sftp.NewClient(sshClient)
	if err != nil {
		sshClient.Close()
		return nil, errors.Errorf("starting sftp subsystem: %w", err)
	}

	logger.Info().Str("addr", addr).Str("user", cfg.Username).Msg("sftp connected")

	return &Archive{
		client:  client,
		ssh:     sshClient,
		conn:    conn,
		timeout: cfg.Timeout,
	}, nil
}

// NewArchive wraps an already established SFTP client. Operations are not
// bounded by a deadline.
func NewArchive(client *sftp.Client) *Archive {
	return &Archive{client: client}
}

// withDeadline bounds a single SFTP exchange on the underlying connection.
func (a *Archive) withDeadline(fn func() error) error {
	if a.conn != nil && a.timeout > 0 {
		_ = a.conn.SetDeadline(time.Now().Add(a.timeout))
		defer a.conn.SetDeadline(time.Time{})
	}
	return fn()
}

// 🔍 Exists reports whether a remote file or directory exists
func (a *Archive) Exists(ctx context.Context, path string) (bool, error) {
	var exists bool
	err := a.withDeadline(func() error {
		_, err := a.client.Stat(path)
		if err == nil {
			exists = true
			return nil
		}
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	})
	if err != nil {
		return false, errors.Errorf("stat %s: %w", path, err)
	}
	return exists, nil
}

// 📁 EnsureDir creates the directory and its parents when missing
func (a *Archive) EnsureDir(ctx context.Context, dir string) error {
	exists, err := a.Exists(ctx, dir)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	zerolog.Ctx(ctx).Debug().Str("dir", dir).Msg("creating remote directory")
	if err := a.withDeadline(func() error { return a.client.MkdirAll(dir) }); err != nil {
		return errors.Errorf("mkdir %s: %w", dir, err)
	}
	return nil
}

// partSuffix marks an upload that has not been renamed into place yet.
const partSuffix = ".part"

// 📤 Put writes data to path, replacing any previous content. The bytes land
// in a sibling temporary file first, so a failed upload never leaves a
// truncated file at path.
func (a *Archive) Put(ctx context.Context, path string, data []byte) error {
	tmp := path + partSuffix
	err := a.withDeadline(func() error {
		if err := a.write(tmp, data); err != nil {
			return err
		}
		return a.replace(tmp, path)
	})
	if err != nil {
		if rerr := a.withDeadline(func() error { return a.client.Remove(tmp) }); rerr != nil && !errors.Is(rerr, os.ErrNotExist) {
			zerolog.Ctx(ctx).Warn().Err(rerr).Str("path", tmp).Msg("removing partial upload")
		}
		return errors.Errorf("put %s: %w", path, err)
	}
	return nil
}

func (a *Archive) write(path string, data []byte) error {
	f, err := a.client.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// replace moves from onto to, overwriting an existing file.
func (a *Archive) replace(from, to string) error {
	if _, ok := a.client.HasExtension("posix-rename@openssh.com"); ok {
		return a.client.PosixRename(from, to)
	}
	if err := a.client.Remove(to); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return a.client.Rename(from, to)
}

// Close ends the SFTP session and its SSH transport.
func (a *Archive) Close() error {
	var errs []error
	if a.client != nil {
		if err := a.client.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.ssh != nil {
		if err := a.ssh.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
