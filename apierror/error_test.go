package apierror_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/nyan-lin-tun/CNCF-people-api/apierror"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := apierror.New(errors.New("test error"), 0)
	require.Equal(t, "test error", err.Error())

	err = apierror.New(nil, http.StatusNotFound)
	require.Equal(t, fmt.Sprintf("%d %s", http.StatusNotFound, http.StatusText(http.StatusNotFound)), err.Error())

	err = apierror.New(nil, 0)
	require.Equal(t, "", err.Error())

	err = apierror.New(nil, 999)
	require.Equal(t, "999", err.Error())
}

func TestFromResponse(t *testing.T) {
	err := apierror.FromResponse(0, []byte(" bad gateway\n"))
	require.Equal(t, "bad gateway", err.Error())

	err = apierror.FromResponse(http.StatusBadGateway, []byte(" bad gateway\n"))
	require.Equal(t, "bad gateway", err.Error())

	ae, ok := err.(*apierror.Error)
	require.True(t, ok)
	require.Equal(t, http.StatusBadGateway, ae.Status())

	err = apierror.FromResponse(http.StatusBadGateway, nil)
	require.Equal(t, fmt.Sprintf("%d %s", http.StatusBadGateway, http.StatusText(http.StatusBadGateway)), err.Error())
}

func TestUnwrap(t *testing.T) {
	errEOF := errors.New("end of file")
	err := apierror.New(errEOF, 0)
	require.ErrorIs(t, err, errEOF)
}
