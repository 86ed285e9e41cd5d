package api

const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>RetroDesk</title>
    <style>
        body {
            font-family: "MS Sans Serif", Tahoma, sans-serif;
            max-width: 800px;
            margin: 50px auto;
            padding: 20px;
            background: #008080;
        }
        .container {
            background: #c0c0c0;
            padding: 30px;
            border: 2px outset #fff;
        }
        h1 {
            margin-top: 0;
        }
        code {
            background: #fff;
            padding: 2px 6px;
        }
    </style>
</head>
<body>
    <div class="container">
        <h1>RetroDesk</h1>
        <p>The desktop server is running. Point the desktop front end at this address.</p>
        <h3>API Endpoints:</h3>
        <ul>
            <li><a href="/api/health">/api/health</a> - Server health check</li>
            <li><a href="/api/content">/api/content</a> - Desktop content tree</li>
            <li><a href="/api/desktop">/api/desktop</a> - Windows, taskbar and stacking</li>
            <li><a href="/api/tray">/api/tray</a> - Clock, weather and volume</li>
            <li><code>/api/desktop/stream</code> - WebSocket: events out, commands in</li>
            <li><code>/proxy?url=...</code> - Framing relay</li>
        </ul>
    </div>
</body>
</html>`
