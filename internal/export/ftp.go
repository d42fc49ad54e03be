package export

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/jlaffaye/ftp"

	"github.com/tphakala/mediaseed/internal/conf"
	"github.com/tphakala/mediaseed/internal/errors"
	"github.com/tphakala/mediaseed/internal/logger"
)

const (
	defaultFTPPort    = 21
	defaultFTPTimeout = 30 * time.Second
	ftpTempPrefix     = "tmp-"
)

// ftpConn is the subset of *ftp.ServerConn used for uploads.
type ftpConn interface {
	Login(user, password string) error
	CurrentDir() (string, error)
	ChangeDir(path string) error
	MakeDir(path string) error
	Stor(path string, r io.Reader) error
	Rename(from, to string) error
	Delete(path string) error
	Quit() error
}

type dialFunc func(ctx context.Context, addr string, timeout time.Duration) (ftpConn, error)

func dialFTP(ctx context.Context, addr string, timeout time.Duration) (ftpConn, error) {
	conn, err := ftp.Dial(addr, ftp.DialWithContext(ctx), ftp.DialWithTimeout(timeout))
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// FTPTarget uploads artifacts to a directory on an FTP server. Each Store
// opens its own connection, uploads to a temporary name and renames it.
type FTPTarget struct {
	host     string
	port     int
	username string
	password string
	basePath string
	timeout  time.Duration
	dial     dialFunc
	log      logger.Logger
}

// NewFTPTarget returns a target for the ftp export settings.
func NewFTPTarget(settings *conf.FTPExport) *FTPTarget {
	t := &FTPTarget{
		host:     settings.Host,
		port:     settings.Port,
		username: settings.Username,
		password: settings.Password,
		basePath: strings.TrimRight(settings.Path, "/"),
		timeout:  settings.Timeout,
		dial:     dialFTP,
		log:      GetLogger().Module("ftp"),
	}
	if t.port == 0 {
		t.port = defaultFTPPort
	}
	if t.timeout <= 0 {
		t.timeout = defaultFTPTimeout
	}
	return t
}

// Name returns the name of this target
func (t *FTPTarget) Name() string { return "ftp" }

// Validate checks that a host is configured.
func (t *FTPTarget) Validate() error {
	if t.host == "" {
		return errors.Newf("ftp export host is not configured").
			Component("export").
			Category(errors.CategoryConfiguration).
			Build()
	}
	return nil
}

func (t *FTPTarget) connect(ctx context.Context) (ftpConn, error) {
	addr := fmt.Sprintf("%s:%d", t.host, t.port)
	conn, err := t.dial(ctx, addr, t.timeout)
	if err != nil {
		return nil, t.wrap(err, "connect")
	}
	if t.username != "" {
		if err := conn.Login(t.username, t.password); err != nil {
			_ = conn.Quit()
			return nil, t.wrap(err, "login")
		}
	}
	return conn, nil
}

// Store uploads data to basePath/name.
func (t *FTPTarget) Store(ctx context.Context, name string, data []byte) error {
	conn, err := t.connect(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := conn.Quit(); err != nil {
			t.log.Debug("ftp quit failed", logger.Error(err))
		}
	}()

	if err := t.createDirectory(conn, t.basePath); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	remote := path.Join(t.basePath, name)
	tmp := path.Join(t.basePath, ftpTempPrefix+name)
	if err := conn.Stor(tmp, bytes.NewReader(data)); err != nil {
		_ = conn.Delete(tmp)
		return t.wrap(err, "stor")
	}
	if err := conn.Rename(tmp, remote); err != nil {
		_ = conn.Delete(tmp)
		return t.wrap(err, "rename")
	}
	return nil
}

// createDirectory makes every missing segment of dir, restoring the working
// directory afterwards. Servers answer "550" both for missing and for
// existing directories, so a failed MakeDir is only fatal when the directory
// still cannot be entered.
func (t *FTPTarget) createDirectory(conn ftpConn, dir string) error {
	if dir == "" || dir == "/" {
		return nil
	}
	cwd, err := conn.CurrentDir()
	if err != nil {
		return t.wrap(err, "pwd")
	}
	defer func() { _ = conn.ChangeDir(cwd) }()

	if conn.ChangeDir(dir) == nil {
		return nil
	}

	current := ""
	if strings.HasPrefix(dir, "/") {
		current = "/"
	}
	for _, segment := range strings.Split(strings.Trim(dir, "/"), "/") {
		current = path.Join(current, segment)
		if conn.ChangeDir(current) == nil {
			continue
		}
		if err := conn.MakeDir(current); err != nil {
			if conn.ChangeDir(current) != nil {
				return t.wrap(err, "mkdir")
			}
		}
	}
	return nil
}

func (t *FTPTarget) wrap(err error, op string) error {
	return errors.New(err).
		Component("export").
		Category(errors.CategoryNetwork).
		Context("target", "ftp").
		Context("host", t.host).
		Context("operation", op).
		Build()
}
