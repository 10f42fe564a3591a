package gateway

import (
	"context"
	"encoding/base64"
	"fmt"
	"sort"
	"strings"

	"github.com/wilhg/dahua-mcp/pkg/dahua"
	"github.com/wilhg/dahua-mcp/pkg/errmodel"
)

// Argument schemas. Draft 2020-12, declared inline next to the tools that use
// them.
var (
	emptySchema = []byte(`{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "additionalProperties": false
}`)

	cameraSchema = []byte(`{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "camera": {"type": "string", "description": "Camera name from list_cameras"}
  },
  "required": ["camera"],
  "additionalProperties": false
}`)

	getConfigSchema = []byte(`{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "camera": {"type": "string", "description": "Camera name from list_cameras"},
    "name": {"type": "string", "description": "Config section name (e.g. 'MotionDetect', 'Encode', 'Network', 'NTP', 'VideoInMode', 'General.MachineName')"}
  },
  "required": ["camera", "name"],
  "additionalProperties": false
}`)

	setConfigSchema = []byte(`{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "camera": {"type": "string", "description": "Camera name from list_cameras"},
    "params": {
      "type": "object",
      "description": "Key-value pairs to set (e.g. {\"MotionDetect[0].Enable\": \"true\"})",
      "additionalProperties": {"type": "string"},
      "minProperties": 1
    }
  },
  "required": ["camera", "params"],
  "additionalProperties": false
}`)

	motionSchema = []byte(`{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "camera": {"type": "string", "description": "Camera name from list_cameras"},
    "enabled": {"type": "boolean", "description": "True to enable, false to disable motion detection"},
    "channel": {"type": "integer", "minimum": 0, "default": 0, "description": "Channel number (default 0)"}
  },
  "required": ["camera", "enabled"],
  "additionalProperties": false
}`)

	recordModeSchema = []byte(`{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "camera": {"type": "string", "description": "Camera name from list_cameras"},
    "mode": {"type": "string", "enum": ["auto", "manual", "on", "off"], "description": "Record mode: auto, manual/on, or off"},
    "channel": {"type": "integer", "minimum": 0, "default": 0, "description": "Channel number (default 0)"}
  },
  "required": ["camera", "mode"],
  "additionalProperties": false
}`)

	snapshotSchema = []byte(`{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "camera": {"type": "string", "description": "Camera name from list_cameras"},
    "channel": {"type": "integer", "minimum": 1, "default": 1, "description": "Channel number, 1-based (default 1)"}
  },
  "required": ["camera"],
  "additionalProperties": false
}`)

	searchLogsSchema = []byte(`{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "camera": {"type": "string", "description": "Camera name from list_cameras"},
    "start_time": {"type": "string", "description": "Start time, 'YYYY-MM-DD HH:MM:SS'"},
    "end_time": {"type": "string", "description": "End time, 'YYYY-MM-DD HH:MM:SS'"},
    "log_type": {"type": "string", "default": "All", "description": "Log type filter (All, Alarm, System, Account, Storage, Event, Record)"},
    "count": {"type": "integer", "minimum": 1, "default": 100, "description": "Max number of log entries to return"}
  },
  "required": ["camera", "start_time", "end_time"],
  "additionalProperties": false
}`)
)

// Catalog builds every tool the server exposes. resolver backs list_cameras;
// all other tools receive their device from the gateway.
func Catalog(resolver Resolver) []Tool {
	tools := []Tool{
		{
			Name:        "list_cameras",
			Description: "List all configured cameras (name, host, port). No credentials are returned.",
			Tags:        []string{"dahua", "discovery", "read-only"},
			ReadOnly:    true,
			Idempotent:  true,
			InputSchema: emptySchema,
			Handler: func(ctx context.Context, _ dahua.Device, _ map[string]any) (any, error) {
				return resolver.List(), nil
			},
		},

		systemInfoTool("get_system_info", "getSystemInfo",
			"Get system info from a Dahua/Amcrest camera (device type, serial number, firmware, etc)."),
		systemInfoTool("get_device_type", "getDeviceType",
			"Get the device type/model of a camera."),
		systemInfoTool("get_software_version", "getSoftwareVersion",
			"Get the firmware/software version of a camera."),
		systemInfoTool("get_machine_name", "getMachineName",
			"Get the machine name of a camera."),
		systemInfoTool("get_serial_number", "getSerialNo",
			"Get the serial number of a camera."),
		systemInfoTool("get_hardware_version", "getHardwareVersion",
			"Get the hardware version of a camera."),
		systemInfoTool("get_vendor", "getVendor",
			"Get the vendor/manufacturer of a camera."),

		{
			Name:        "get_config",
			Description: "Get a configuration section from a camera by name. Generic getter for any configManager section.",
			Tags:        []string{"dahua", "config", "read-only"},
			ReadOnly:    true,
			Idempotent:  true,
			NeedsCamera: true,
			InputSchema: getConfigSchema,
			Handler: func(ctx context.Context, dev dahua.Device, args map[string]any) (any, error) {
				name, _ := args["name"].(string)
				return fetchParsed(ctx, dev, dahua.NewRequest("configManager.cgi").
					Param("action", "getConfig").
					Param("name", name))
			},
		},
		configReadTool("get_motion_detection", "MotionDetect",
			"Get motion detection configuration from a camera."),
		configReadTool("get_video_in_mode", "VideoInMode",
			"Get the video input mode (day/night profile) from a camera. Mode values: 0=day, 1=night, 2=normal scene."),
		configReadTool("get_encoding_config", "Encode",
			"Get encoding/streaming configuration from a camera (resolution, bitrate, FPS, codec)."),
		configReadTool("get_network_config", "Network",
			"Get network configuration from a camera (IP, gateway, DNS, etc)."),
		configReadTool("get_ntp_config", "NTP",
			"Get NTP (time sync) configuration from a camera."),

		{
			Name:        "set_config",
			Description: "Set configuration values on a camera. Generic setter; each key-value pair is sent as a setConfig parameter.",
			Tags:        []string{"dahua", "config", "write", "destructive"},
			Destructive: true,
			NeedsCamera: true,
			InputSchema: setConfigSchema,
			Handler: func(ctx context.Context, dev dahua.Device, args map[string]any) (any, error) {
				params, _ := args["params"].(map[string]any)
				req := dahua.NewRequest("configManager.cgi").Param("action", "setConfig")
				// Deterministic parameter order for identical inputs.
				keys := make([]string, 0, len(params))
				for k := range params {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				for _, k := range keys {
					req.Param(k, fmt.Sprint(params[k]))
				}
				return fetchParsed(ctx, dev, req)
			},
		},
		{
			Name:        "enable_motion_detection",
			Description: "Enable or disable motion detection on a camera channel.",
			Tags:        []string{"dahua", "config", "write"},
			Idempotent:  true,
			NeedsCamera: true,
			InputSchema: motionSchema,
			Handler: func(ctx context.Context, dev dahua.Device, args map[string]any) (any, error) {
				enabled, _ := args["enabled"].(bool)
				channel := intArg(args, "channel", 0)
				return fetchParsed(ctx, dev, dahua.NewRequest("configManager.cgi").
					Param("action", "setConfig").
					Param(fmt.Sprintf("MotionDetect[%d].Enable", channel), fmt.Sprintf("%t", enabled)).
					Param(fmt.Sprintf("MotionDetect[%d].DetectVersion", channel), "V3.0"))
			},
		},
		{
			Name:        "set_record_mode",
			Description: "Set the recording mode on a camera channel: 'auto' (0), 'manual'/'on' (1), or 'off' (2).",
			Tags:        []string{"dahua", "config", "write"},
			Idempotent:  true,
			NeedsCamera: true,
			InputSchema: recordModeSchema,
			Handler: func(ctx context.Context, dev dahua.Device, args map[string]any) (any, error) {
				mode, _ := args["mode"].(string)
				channel := intArg(args, "channel", 0)
				return fetchParsed(ctx, dev, dahua.NewRequest("configManager.cgi").
					Param("action", "setConfig").
					Param(fmt.Sprintf("RecordMode[%d].Mode", channel), recordModeValue(mode)))
			},
		},

		{
			Name:        "reboot",
			Description: "Reboot a camera. The camera will be unavailable for 1-2 minutes during restart.",
			Tags:        []string{"dahua", "system", "write", "destructive"},
			Destructive: true,
			NeedsCamera: true,
			InputSchema: cameraSchema,
			Handler: func(ctx context.Context, dev dahua.Device, _ map[string]any) (any, error) {
				return fetchParsed(ctx, dev, dahua.NewRequest("magicBox.cgi").Param("action", "reboot"))
			},
		},
		{
			Name:        "take_snapshot",
			Description: "Take a JPEG snapshot from a camera. Returns base64-encoded image data.",
			Tags:        []string{"dahua", "snapshot", "read-only"},
			ReadOnly:    true,
			Idempotent:  true,
			NeedsCamera: true,
			InputSchema: snapshotSchema,
			Handler: func(ctx context.Context, dev dahua.Device, args map[string]any) (any, error) {
				channel := intArg(args, "channel", 1)
				data, contentType, err := dev.FetchBytes(ctx, dahua.NewRequest("snapshot.cgi").
					Param("channel", fmt.Sprintf("%d", channel)))
				if err != nil {
					return nil, err
				}
				if contentType == "" {
					contentType = "image/jpeg"
				}
				return map[string]any{
					"image_base64": base64.StdEncoding.EncodeToString(data),
					"content_type": contentType,
					"size_bytes":   len(data),
				}, nil
			},
		},
		{
			Name:        "search_logs",
			Description: "Search camera logs over a time range using the 3-step log.cgi API (startFind/doFind/stopFind).",
			Tags:        []string{"dahua", "logs", "read-only"},
			ReadOnly:    true,
			Idempotent:  true,
			NeedsCamera: true,
			InputSchema: searchLogsSchema,
			Handler:     searchLogs,
		},
	}
	return tools
}

func systemInfoTool(name, action, description string) Tool {
	return Tool{
		Name:        name,
		Description: description,
		Tags:        []string{"dahua", "system", "read-only"},
		ReadOnly:    true,
		Idempotent:  true,
		NeedsCamera: true,
		InputSchema: cameraSchema,
		Handler: func(ctx context.Context, dev dahua.Device, _ map[string]any) (any, error) {
			return fetchParsed(ctx, dev, dahua.NewRequest("magicBox.cgi").Param("action", action))
		},
	}
}

func configReadTool(name, section, description string) Tool {
	return Tool{
		Name:        name,
		Description: description,
		Tags:        []string{"dahua", "config", "read-only"},
		ReadOnly:    true,
		Idempotent:  true,
		NeedsCamera: true,
		InputSchema: cameraSchema,
		Handler: func(ctx context.Context, dev dahua.Device, _ map[string]any) (any, error) {
			return fetchParsed(ctx, dev, dahua.NewRequest("configManager.cgi").
				Param("action", "getConfig").
				Param("name", section))
		},
	}
}

func searchLogs(ctx context.Context, dev dahua.Device, args map[string]any) (any, error) {
	startTime, _ := args["start_time"].(string)
	endTime, _ := args["end_time"].(string)
	logType, _ := args["log_type"].(string)
	if logType == "" {
		logType = "All"
	}
	count := intArg(args, "count", 100)

	startResp, err := dev.FetchRaw(ctx, dahua.NewRequest("log.cgi").
		Param("action", "startFind").
		Param("condition.Channel", "0").
		Param("condition.Types", "["+logType+"]").
		Param("condition.StartTime", startTime).
		Param("condition.EndTime", endTime))
	if err != nil {
		return nil, err
	}

	token := findToken(startResp)
	if token == "" {
		return nil, errmodel.Device("log_search", "log search returned no token",
			map[string]any{"camera": dev.Name(), "raw": startResp})
	}

	entries, err := dev.Fetch(ctx, dahua.NewRequest("log.cgi").
		Param("action", "doFind").
		Param("token", token).
		Param("count", fmt.Sprintf("%d", count)))

	// Best-effort cleanup; the camera expires abandoned tokens on its own.
	_, _ = dev.FetchRaw(context.WithoutCancel(ctx), dahua.NewRequest("log.cgi").
		Param("action", "stopFind").
		Param("token", token))

	if err != nil {
		return nil, err
	}
	return kvPayload(entries), nil
}

// findToken pulls the find token from a startFind response.
func findToken(raw string) string {
	for _, line := range strings.Split(strings.TrimSpace(raw), "\n") {
		key, value, ok := strings.Cut(line, "=")
		if ok && strings.Contains(strings.ToLower(key), "token") {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

func fetchParsed(ctx context.Context, dev dahua.Device, req *dahua.Request) (any, error) {
	kv, err := dev.Fetch(ctx, req)
	if err != nil {
		return nil, err
	}
	return kvPayload(kv), nil
}

// kvPayload renders a parsed response as the tool result. Bodies with no
// key=value lines (a bare "OK" from setConfig) surface as {"result": body}.
func kvPayload(kv *dahua.KV) map[string]any {
	if kv.Len() == 0 {
		return map[string]any{"result": strings.TrimSpace(kv.Raw)}
	}
	return kv.Map()
}

func recordModeValue(mode string) string {
	switch strings.ToLower(mode) {
	case "manual", "on":
		return "1"
	case "off":
		return "2"
	default:
		return "0"
	}
}

func intArg(args map[string]any, key string, def int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return def
}
