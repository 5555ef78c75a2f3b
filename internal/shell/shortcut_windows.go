//go:build windows

package shell

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"
	"golang.org/x/sys/windows"

	"jsondropper/internal/util"
)

func init() {
	SendToDirDelegate = sendToDirWindows
	CreateShortcutDelegate = createShortcutWindows
}

func sendToDirWindows() (string, error) {
	return windows.KnownFolderPath(windows.FOLDERID_SendTo, windows.KF_FLAG_DEFAULT)
}

// createShortcutWindows writes the .lnk through the WScript.Shell COM object.
func createShortcutWindows(target, shortcutPath string) error {
	if err := ole.CoInitializeEx(0, ole.COINIT_APARTMENTTHREADED|ole.COINIT_DISABLE_OLE1DDE); err != nil {
		// S_FALSE: already initialized on this thread
		if !strings.Contains(err.Error(), "S_FALSE") {
			return fmt.Errorf("initialize COM: %w", err)
		}
	}
	defer ole.CoUninitialize()

	unknown, err := oleutil.CreateObject("WScript.Shell")
	if err != nil {
		return fmt.Errorf("create WScript.Shell: %w", err)
	}
	defer unknown.Release()

	wshell, err := unknown.QueryInterface(ole.IID_IDispatch)
	if err != nil {
		return fmt.Errorf("query WScript.Shell IDispatch: %w", err)
	}
	defer wshell.Release()

	cs, err := oleutil.CallMethod(wshell, "CreateShortcut", shortcutPath)
	if err != nil {
		return fmt.Errorf("call CreateShortcut: %w", err)
	}
	shortcut := cs.ToIDispatch()
	if shortcut == nil {
		return fmt.Errorf("CreateShortcut returned no object")
	}
	defer shortcut.Release()

	if _, err := oleutil.PutProperty(shortcut, "TargetPath", target); err != nil {
		return fmt.Errorf("set TargetPath '%s': %w", target, err)
	}
	if _, err := oleutil.PutProperty(shortcut, "WorkingDirectory", filepath.Dir(target)); err != nil {
		util.WarningPrint("Could not set shortcut working directory: %v\n", err)
	}
	if _, err := oleutil.PutProperty(shortcut, "Description", "Replace project folders from a form export"); err != nil {
		util.WarningPrint("Could not set shortcut description: %v\n", err)
	}
	if _, err := oleutil.PutProperty(shortcut, "IconLocation", target+",0"); err != nil {
		util.WarningPrint("Could not set shortcut icon: %v\n", err)
	}

	if _, err := oleutil.CallMethod(shortcut, "Save"); err != nil {
		return fmt.Errorf("save shortcut '%s': %w", shortcutPath, err)
	}
	return nil
}
